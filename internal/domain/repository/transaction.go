package repository

import "context"

// TransactionManager runs a unit of work atomically. Session rotation,
// compromise marking, order creation and payment recording depend on it.
type TransactionManager interface {
	// Execute commits when fn returns nil and rolls back otherwise. Errors
	// returned by fn still match with errors.Is.
	Execute(ctx context.Context, fn func(txRepoFactory RepositoryFactory) error) error
}

// RepositoryFactory hands out repositories bound to the open transaction.
type RepositoryFactory interface {
	// UserRepo returns a UserRepository instance bound to the current transaction.
	UserRepo() UserRepository

	// SessionRepo returns a SessionRepository instance bound to the current transaction.
	SessionRepo() SessionRepository

	// ProductRepo returns a ProductRepository instance bound to the current transaction.
	ProductRepo() ProductRepository

	// OrderRepo returns an OrderRepository instance bound to the current transaction.
	OrderRepo() OrderRepository

	// PaymentRepo returns a PaymentRepository instance bound to the current transaction.
	PaymentRepo() PaymentRepository
}
