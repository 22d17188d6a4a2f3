package main

import (
	"context"
	"log/slog"
	"os"

	"ventas/config"
	"ventas/internal/delivery"
	"ventas/internal/delivery/api"
	"ventas/internal/delivery/api/middleware"
	"ventas/internal/delivery/api/router/handler"
	"ventas/internal/delivery/worker"
	"ventas/internal/domain/service"
	"ventas/internal/infra/auth"
	"ventas/internal/infra/cache"
	logs "ventas/internal/infra/log"
	"ventas/internal/infra/metrics"
	"ventas/internal/infra/notification"
	"ventas/internal/infra/persistence/postgres"
	"ventas/internal/infra/pubsub"
	"ventas/internal/infra/qrcode"
	"ventas/internal/infra/wompi"
	"ventas/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(appOptions()...).Run()
}

func appOptions() []fx.Option {
	return []fx.Option{
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	}
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		metrics.New,
		postgres.New,
		cache.NewRedisClient,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
			postgres.NewSessionRepository,
			postgres.NewProductRepository,
			postgres.NewOrderRepository,
			postgres.NewPaymentRepository,
			postgres.NewAnalyticsRepository,
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			notification.NewNotificationService,
			pubsub.NewEventPublisher,
			qrcode.NewQRCodeServiceFromConfig,
			wompi.NewGateway,
			cache.NewTokenBucket,
			newMetricsRecorder,
		),
	)
}

// newMetricsRecorder exposes the Prometheus collectors to the use cases.
func newMetricsRecorder(m *metrics.Metrics) service.MetricsRecorder {
	return m
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSessionService,
			impl.NewAuthService,
			impl.NewProductService,
			impl.NewUserService,
			impl.NewOrderService,
			impl.NewPaymentService,
			impl.NewAnalyticsService,
			impl.NewWebhookService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewRateLimitMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewSessionHandler,
			handler.NewOrderHandler,
			handler.NewProductHandler,
			handler.NewPaymentHandler,
			handler.NewAnalyticsHandler,
			handler.NewWebhookHandler,
			handler.NewUserHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
			fx.Annotate(
				worker.NewSessionSweeper,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
