package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "ventas/internal/delivery/context"
	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/repository"
	"ventas/internal/errors"
	"ventas/internal/usecase"

	"go.uber.org/fx"
)

const (
	defaultAnalyticsWindow = 30 * 24 * time.Hour
	defaultTopProducts     = 10
	maxTopProducts         = 100
)

// analyticsService implements the AnalyticsUsecase interface.
type analyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	logger        *slog.Logger
	now           func() time.Time
}

// AnalyticsServiceParams holds dependencies for AnalyticsService, injected by Fx.
type AnalyticsServiceParams struct {
	fx.In

	AnalyticsRepo repository.AnalyticsRepository
	Logger        *slog.Logger
}

// NewAnalyticsService is the constructor for analyticsService.
func NewAnalyticsService(params AnalyticsServiceParams) usecase.AnalyticsUsecase {
	return &analyticsService{
		analyticsRepo: params.AnalyticsRepo,
		logger:        params.Logger,
		now:           time.Now,
	}
}

func (srv *analyticsService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// window fills a missing bound with the default reporting window ending now.
func (srv *analyticsService) window(from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = srv.now()
	}
	if from.IsZero() {
		from = to.Add(-defaultAnalyticsWindow)
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, domainerrors.ErrValidationFailed.WithDetails("from must be before to")
	}

	return from.UTC(), to.UTC(), nil
}

// Summary aggregates orders created in [from, to).
func (srv *analyticsService) Summary(ctx context.Context, from, to time.Time) (*entity.SalesSummary, error) {
	from, to, err := srv.window(from, to)
	if err != nil {
		return nil, err
	}

	summary, err := srv.analyticsRepo.SalesSummary(ctx, from, to)
	if err != nil {
		srv.log(ctx).Error("Failed to compute sales summary", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to compute sales summary")
	}

	return summary, nil
}

// TopProducts ranks products by paid units sold in [from, to).
func (srv *analyticsService) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]*entity.ProductSales, error) {
	from, to, err := srv.window(from, to)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopProducts
	}
	if limit > maxTopProducts {
		limit = maxTopProducts
	}

	ranking, err := srv.analyticsRepo.TopProducts(ctx, from, to, limit)
	if err != nil {
		srv.log(ctx).Error("Failed to rank products", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to rank products")
	}

	return ranking, nil
}
