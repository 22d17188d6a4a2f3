package repository

import (
	"context"
	"time"

	"ventas/internal/domain/entity"
)

// AnalyticsRepository defines read-only aggregate queries over orders.
type AnalyticsRepository interface {
	// SalesSummary aggregates orders created in [from, to).
	SalesSummary(ctx context.Context, from, to time.Time) (*entity.SalesSummary, error)

	// TopProducts ranks products by units sold in [from, to).
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]*entity.ProductSales, error)
}
