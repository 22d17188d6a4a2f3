package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"ventas/config"
	"ventas/internal/domain/lifecycle"
	"ventas/internal/errors"
	"ventas/internal/infra/metrics"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const (
	poolSampleInterval = 5 * time.Second
	poolWaitWarnAfter  = 50 * time.Millisecond
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// New opens the primary and any read replicas, pings on start and closes on stop.
// GORM's implicit per-statement transaction is off: multi-row writes go
// through the TransactionManager.
func New(params Params) (*gorm.DB, error) {
	if params.Config.Postgres == nil {
		return nil, errors.New("postgres configuration is missing")
	}

	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open postgres")
	}
	db = db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to unwrap postgres pool")
	}

	sampler := &poolSampler{logger: params.Logger, metrics: params.Metrics, stats: sqlDB.Stats}
	samplerCtx, stopSampler := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(pingCtx); err != nil {
				return errors.Wrap(err, "failed to ping postgres")
			}
			go sampler.run(samplerCtx, poolSampleInterval)

			return nil
		},
		OnStop: func(context.Context) error {
			stopSampler()

			return errors.WithStack(sqlDB.Close())
		},
	})

	return db, nil
}

// poolSampler exports pool gauges and reports callers that waited for a
// connection since the previous sample.
type poolSampler struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	stats   func() sql.DBStats
	prev    sql.DBStats
}

func (s *poolSampler) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.prev = s.stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sample(ctx)
		}
	}
}

func (s *poolSampler) sample(ctx context.Context) {
	cur := s.stats()
	defer func() { s.prev = cur }()

	if s.metrics != nil {
		s.metrics.ObserveDBPool(cur)
	}

	waits := cur.WaitCount - s.prev.WaitCount
	if waits <= 0 || s.logger == nil {
		return
	}
	waited := cur.WaitDuration - s.prev.WaitDuration

	level := slog.LevelDebug
	if waited >= poolWaitWarnAfter {
		level = slog.LevelWarn
	}
	s.logger.LogAttrs(ctx, level, "Postgres pool wait",
		slog.Int64("waits", waits),
		slog.Duration("waited", waited),
		slog.Duration("avg_wait", waited/time.Duration(waits)),
		slog.Int("open", cur.OpenConnections),
		slog.Int("in_use", cur.InUse),
		slog.Int("idle", cur.Idle),
		slog.Int("max_open", cur.MaxOpenConnections),
	)
}
