package service

import (
	"ventas/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentEvent is a provider notification whose signature has been verified.
type PaymentEvent struct {
	EventType     string
	TransactionID string
	Reference     string               // The order id the checkout was opened for.
	Status        string               // Raw provider status.
	PaymentStatus entity.PaymentStatus // Mapped status; empty when the provider status is unknown.
	AmountInCents int64
	Currency      string
}

// PaymentGateway abstracts the payment provider (Wompi).
type PaymentGateway interface {
	// ParseEvent verifies the signature of a raw webhook body and decodes it.
	ParseEvent(body []byte) (*PaymentEvent, error)

	// CheckoutURL builds a signed hosted-checkout link for an order total.
	CheckoutURL(orderID uuid.UUID, total decimal.Decimal) (string, error)
}
