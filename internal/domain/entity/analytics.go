package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesSummary aggregates orders created within a time window.
type SalesSummary struct {
	From              time.Time
	To                time.Time
	TotalOrders       int64
	OrdersByStatus    map[PaymentStatus]int64
	Revenue           decimal.Decimal // Sum of paid order totals.
	AverageOrderValue decimal.Decimal // Revenue divided by paid orders.
}

// ProductSales is one row of the best-sellers ranking.
type ProductSales struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int64
	Revenue     decimal.Decimal
}
