package entity

import (
	"time"

	"github.com/google/uuid"
)

// Payment records the latest known state of a provider transaction for an order.
type Payment struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	Provider          string
	ProviderReference string // Provider transaction id; unique per provider.
	AmountInCents     int64
	Currency          string
	Status            PaymentStatus
	ProviderStatus    string // Raw provider status, e.g. APPROVED.
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
