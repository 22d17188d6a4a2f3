package usecase

import (
	"context"

	"ventas/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateOrderInput defines the data required to place an order.
type CreateOrderInput struct {
	ClientName  string
	ClientPhone string
	ProductID   uuid.UUID
	Quantity    int
}

// PaymentQROutput is a PNG rendering of an order's checkout link.
type PaymentQROutput struct {
	URL string
	PNG []byte
}

// OrderUsecase defines order placement and the back-office order operations.
type OrderUsecase interface {
	// CreateOrder snapshots the product price and inserts a pending order atomically.
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.Order, error)

	GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	ListOrders(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) (*entity.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error

	// GetPaymentLink returns the signed hosted-checkout URL for the order total.
	GetPaymentLink(ctx context.Context, id uuid.UUID) (string, error)
	GetPaymentQR(ctx context.Context, id uuid.UUID) (*PaymentQROutput, error)
}
