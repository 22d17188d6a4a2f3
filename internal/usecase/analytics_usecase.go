package usecase

import (
	"context"
	"time"

	"ventas/internal/domain/entity"
)

// AnalyticsUsecase defines read-only sales reporting.
type AnalyticsUsecase interface {
	Summary(ctx context.Context, from, to time.Time) (*entity.SalesSummary, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]*entity.ProductSales, error)
}
