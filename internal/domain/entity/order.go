package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of an order's payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// IsValid checks if the PaymentStatus is a known value.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	default:
		return false
	}
}

// Order is a single-product wholesale order. UnitPrice is the catalog price
// snapshotted when the order was created; Total = UnitPrice * Quantity.
type Order struct {
	ID            uuid.UUID
	ClientName    string
	ClientPhone   string
	ProductID     uuid.UUID
	Quantity      int
	UnitPrice     decimal.Decimal
	Total         decimal.Decimal
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	PaymentStatus PaymentStatus
	Limit         int
	Offset        int
}
