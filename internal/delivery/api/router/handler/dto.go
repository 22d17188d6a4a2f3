package handler

import (
	"time"

	"ventas/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Response projections. Entities never go on the wire directly, so secrets
// such as password and token hashes cannot leak by accident.

type userResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty"`
	Role        string    `json:"role"`
	Disabled    bool      `json:"disabled"`
	Compromised bool      `json:"compromised"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role.String(),
		Disabled:    u.Disabled,
		Compromised: u.Compromised,
		CreatedAt:   u.CreatedAt,
	}
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type sessionResponse struct {
	ID         uuid.UUID  `json:"id"`
	UserAgent  string     `json:"user_agent"`
	IPAddress  string     `json:"ip_address"`
	DeviceName string     `json:"device_name"`
	Revoked    bool       `json:"revoked"`
	Expired    bool       `json:"expired"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

func newSessionResponse(s *entity.Session, now time.Time) sessionResponse {
	return sessionResponse{
		ID:         s.ID,
		UserAgent:  s.UserAgent,
		IPAddress:  s.IPAddress,
		DeviceName: s.DeviceName,
		Revoked:    s.Revoked,
		Expired:    s.IsExpired(now),
		CreatedAt:  s.CreatedAt,
		ExpiresAt:  s.ExpiresAt,
		LastUsedAt: s.LastUsedAt,
	}
}

type orderResponse struct {
	ID            uuid.UUID       `json:"id"`
	ClientName    string          `json:"client_name"`
	ClientPhone   string          `json:"client_phone"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Total         decimal.Decimal `json:"total"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func newOrderResponse(o *entity.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		ClientName:    o.ClientName,
		ClientPhone:   o.ClientPhone,
		ProductID:     o.ProductID,
		Quantity:      o.Quantity,
		UnitPrice:     o.UnitPrice,
		Total:         o.Total,
		PaymentStatus: string(o.PaymentStatus),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

type productResponse struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func newProductResponse(p *entity.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type paymentResponse struct {
	ID                uuid.UUID `json:"id"`
	OrderID           uuid.UUID `json:"order_id"`
	Provider          string    `json:"provider"`
	ProviderReference string    `json:"provider_reference"`
	AmountInCents     int64     `json:"amount_in_cents"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	ProviderStatus    string    `json:"provider_status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func newPaymentResponse(p *entity.Payment) paymentResponse {
	return paymentResponse{
		ID:                p.ID,
		OrderID:           p.OrderID,
		Provider:          p.Provider,
		ProviderReference: p.ProviderReference,
		AmountInCents:     p.AmountInCents,
		Currency:          p.Currency,
		Status:            string(p.Status),
		ProviderStatus:    p.ProviderStatus,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func mapSlice[T, R any](items []*T, project func(*T) R) []R {
	out := make([]R, 0, len(items))
	for _, item := range items {
		out = append(out, project(item))
	}

	return out
}
