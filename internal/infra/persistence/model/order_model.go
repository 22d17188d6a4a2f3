package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel mirrors the 'orders' table. The product foreign key is restrictive
// so a product with orders cannot be deleted.
type OrderModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ClientName    string          `gorm:"type:varchar(200);not null"`
	ClientPhone   string          `gorm:"type:varchar(32);not null"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_orders_product_id"`
	Quantity      int             `gorm:"not null;check:quantity > 0"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Total         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	PaymentStatus string          `gorm:"type:varchar(20);not null;default:'pending';index:idx_orders_payment_status"`
	CreatedAt     time.Time       `gorm:"index:idx_orders_created_at"`
	UpdatedAt     time.Time

	Product *ProductModel `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

// TableName explicitly sets the table name for GORM.
func (OrderModel) TableName() string {
	return "orders"
}
