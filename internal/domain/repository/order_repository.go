package repository

import (
	"context"
	"errors"

	"ventas/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrOrderNotFound is returned when an order does not exist.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines order persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context, filter entity.OrderFilter) ([]*entity.Order, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entity.PaymentStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}
