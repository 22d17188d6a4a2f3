// Package worker holds background deliveries that run next to the API server.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ventas/config"
	"ventas/internal/delivery"
	"ventas/internal/domain/lifecycle"
	"ventas/internal/usecase"

	"go.uber.org/fx"
)

// SweeperParams holds dependencies for the session sweeper.
type SweeperParams struct {
	fx.In

	Lc        fx.Lifecycle
	Cfg       *config.Config
	Logger    *slog.Logger
	SessionUC usecase.SessionManager
}

type sessionSweeper struct {
	sessionUC usecase.SessionManager
	logger    *slog.Logger
	interval  time.Duration
	now       func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewSessionSweeper creates the delivery that periodically deletes expired sessions.
func NewSessionSweeper(params SweeperParams) delivery.Delivery {
	s := newSessionSweeper(params.SessionUC, params.Logger, params.Cfg.Auth.SessionCleanupInterval)

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			s.stop()

			return nil
		},
	})

	return s
}

func newSessionSweeper(sessionUC usecase.SessionManager, logger *slog.Logger, interval time.Duration) *sessionSweeper {
	return &sessionSweeper{
		sessionUC: sessionUC,
		logger:    logger,
		interval:  interval,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// Serve sweeps once per interval until ctx is cancelled or the app stops.
func (s *sessionSweeper) Serve(ctx context.Context) error {
	s.logger.Info("Starting session sweeper", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.done:
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *sessionSweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	deleted, err := s.sessionUC.CleanupExpiredSessions(sweepCtx, s.now())
	if err != nil {
		// Already logged by the session service; the next tick retries.
		return
	}

	level := slog.LevelDebug
	if deleted > 0 {
		level = slog.LevelInfo
	}
	s.logger.Log(ctx, level, "Expired sessions swept", slog.Int("deleted", deleted))
}

func (s *sessionSweeper) stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping session sweeper")
		close(s.done)
	})
}
