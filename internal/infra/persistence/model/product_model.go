package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductModel mirrors the 'products' table.
type ProductModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SKU         string          `gorm:"column:sku;type:varchar(64);uniqueIndex:idx_products_sku;not null"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Category    string          `gorm:"type:varchar(100);index:idx_products_category"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	Active      bool            `gorm:"not null"`             
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}
