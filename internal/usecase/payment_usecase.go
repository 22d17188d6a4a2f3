package usecase

import (
	"context"

	"ventas/internal/domain/entity"

	"github.com/google/uuid"
)

// PaymentEventOutput reports how a provider notification was applied.
type PaymentEventOutput struct {
	Ignored   bool // True for event types or statuses that carry no payment change.
	OrderKept bool // True when the payment was recorded but a paid order kept its status.
	Payment   *entity.Payment
}

// PaymentUsecase defines payment queries and provider webhook handling.
type PaymentUsecase interface {
	// HandleWompiEvent verifies a raw Wompi webhook body and applies it to the
	// referenced order and its payment record in one transaction.
	HandleWompiEvent(ctx context.Context, body []byte) (*PaymentEventOutput, error)

	GetPayment(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	ListPayments(ctx context.Context, orderID *uuid.UUID) ([]*entity.Payment, error)
}
