package postgres

import (
	"context"
	"time"

	"ventas/internal/domain/entity"
	"ventas/internal/domain/repository"
	"ventas/internal/errors"
	"ventas/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// analyticsRepository implements the domain.AnalyticsRepository interface.
// Aggregates run against read replicas when dbresolver has any configured.
type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository is the constructor for analyticsRepository.
func NewAnalyticsRepository(db *gorm.DB) repository.AnalyticsRepository {
	return &analyticsRepository{db: db}
}

type statusAggregate struct {
	PaymentStatus string
	Orders        int64
	Total         decimal.Decimal
}

type productAggregate struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int64
	Revenue     decimal.Decimal
}

// SalesSummary counts orders per payment status and sums the paid totals.
func (repo *analyticsRepository) SalesSummary(ctx context.Context, from, to time.Time) (*entity.SalesSummary, error) {
	var rows []statusAggregate
	err := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Select("payment_status, COUNT(*) AS orders, COALESCE(SUM(total), 0) AS total").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("payment_status").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate sales")
	}

	summary := &entity.SalesSummary{
		From:              from,
		To:                to,
		OrdersByStatus:    make(map[entity.PaymentStatus]int64, len(rows)),
		Revenue:           decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}

	var paidOrders int64
	for _, row := range rows {
		status := entity.PaymentStatus(row.PaymentStatus)
		summary.OrdersByStatus[status] = row.Orders
		summary.TotalOrders += row.Orders
		if status == entity.PaymentStatusPaid {
			summary.Revenue = row.Total
			paidOrders = row.Orders
		}
	}
	if paidOrders > 0 {
		summary.AverageOrderValue = summary.Revenue.Div(decimal.NewFromInt(paidOrders)).Round(2)
	}

	return summary, nil
}

// TopProducts ranks products by units sold in paid orders.
func (repo *analyticsRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]*entity.ProductSales, error) {
	var rows []productAggregate
	err := repo.db.WithContext(ctx).
		Table("orders AS o").
		Select("o.product_id, p.name AS product_name, SUM(o.quantity) AS quantity, SUM(o.total) AS revenue").
		Joins("JOIN products AS p ON p.id = o.product_id").
		Where("o.created_at >= ? AND o.created_at < ?", from, to).
		Where("o.payment_status = ?", string(entity.PaymentStatusPaid)).
		Group("o.product_id, p.name").
		Order("quantity DESC, revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to rank products")
	}

	ranking := make([]*entity.ProductSales, 0, len(rows))
	for _, row := range rows {
		ranking = append(ranking, &entity.ProductSales{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			Revenue:     row.Revenue,
		})
	}

	return ranking, nil
}
