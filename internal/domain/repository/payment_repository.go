package repository

import (
	"context"
	"errors"

	"ventas/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrPaymentNotFound is returned when a payment does not exist.
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepository defines payment persistence.
type PaymentRepository interface {
	// Upsert inserts the payment or, when (provider, provider_reference) already
	// exists, updates its status and amount in place.
	Upsert(ctx context.Context, payment *entity.Payment) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)

	// List returns payments newest first, optionally restricted to one order.
	List(ctx context.Context, orderID *uuid.UUID) ([]*entity.Payment, error)
}
