package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentModel mirrors the 'payments' table. (provider, provider_reference)
// identifies a provider transaction and is the upsert conflict target.
type PaymentModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrderID           uuid.UUID `gorm:"type:uuid;not null;index:idx_payments_order_id"`
	Provider          string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_payments_provider_reference"`
	ProviderReference string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_payments_provider_reference"`
	AmountInCents     int64     `gorm:"not null"`
	Currency          string    `gorm:"type:char(3);not null"`
	Status            string    `gorm:"type:varchar(20);not null"`
	ProviderStatus    string    `gorm:"type:varchar(32)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Order *OrderModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (PaymentModel) TableName() string {
	return "payments"
}
