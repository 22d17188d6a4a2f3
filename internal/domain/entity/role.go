package entity

// Role is the authorization scope carried in access tokens.
type Role string

const (
	// RoleCustomer is assigned at registration. Customers place and pay orders.
	RoleCustomer Role = "customer"
	// RoleOperator runs the back office: catalog, payment status, analytics.
	RoleOperator Role = "operator"
	// RoleAdmin can also delete orders and administer accounts.
	RoleAdmin Role = "admin"
)

// BackOfficeRoles may use the dashboard.
var BackOfficeRoles = []Role{RoleOperator, RoleAdmin}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleOperator, RoleAdmin:
		return true
	}

	return false
}
