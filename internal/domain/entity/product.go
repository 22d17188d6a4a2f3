package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item sold wholesale. Price is tax-inclusive.
type Product struct {
	ID          uuid.UUID
	SKU         string
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Stock       int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	Category   string
	Search     string
	OnlyActive bool
	Limit      int
	Offset     int
}
