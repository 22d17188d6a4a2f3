package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ventas/config"
	deliverycontext "ventas/internal/delivery/context"
	"ventas/internal/errors"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// queryLogger adapts GORM logging to slog. Records go through the request
// logger found on the context, so they carry request_id and user_id.
//
// Bound values are never rendered into the logged SQL: they include password
// hashes, refresh token hashes and customer phone numbers.
type queryLogger struct {
	base  *slog.Logger
	level gormlogger.LogLevel
}

var (
	_ gormlogger.Interface = (*queryLogger)(nil)
	_ gorm.ParamsFilter    = (*queryLogger)(nil)
)

func newGormSlogLogger(base *slog.Logger, cfg *config.Config) gormlogger.Interface {
	level := gormlogger.Warn
	if cfg != nil && cfg.Env.Debug {
		level = gormlogger.Info
	}

	return &queryLogger{base: base, level: level}
}

func (l *queryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &queryLogger{base: l.base, level: level}
}

// ParamsFilter drops the values so Trace only ever sees placeholders.
func (l *queryLogger) ParamsFilter(_ context.Context, sql string, _ ...any) (string, []any) {
	return sql, nil
}

func (l *queryLogger) Info(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Info, slog.LevelInfo, msg, args)
}

func (l *queryLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Warn, slog.LevelWarn, msg, args)
}

func (l *queryLogger) Error(ctx context.Context, msg string, args ...any) {
	l.printf(ctx, gormlogger.Error, slog.LevelError, msg, args)
}

func (l *queryLogger) printf(ctx context.Context, enabledAt gormlogger.LogLevel, level slog.Level, msg string, args []any) {
	if l.base == nil || l.level < enabledAt {
		return
	}

	l.logger(ctx).LogAttrs(ctx, level, "GORM "+level.String(), slog.String("message", fmt.Sprintf(msg, args...)))
}

// Trace logs failed queries, then slow ones, then everything when the level is Info.
// A missing row is an expected outcome for lookups and is not logged.
func (l *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.base == nil || l.level == gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.query(ctx, slog.LevelError, "GORM query failed", fc, elapsed, slog.String("error", err.Error()))
	case elapsed > slowQueryThreshold && l.level >= gormlogger.Warn:
		l.query(ctx, slog.LevelWarn, "GORM slow query", fc, elapsed, slog.Duration("threshold", slowQueryThreshold))
	case l.level >= gormlogger.Info:
		l.query(ctx, slog.LevelInfo, "GORM query", fc, elapsed)
	}
}

func (l *queryLogger) query(ctx context.Context, level slog.Level, msg string, fc func() (string, int64), elapsed time.Duration, extra ...slog.Attr) {
	sql, rows := fc()
	attrs := append([]slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}, extra...)

	l.logger(ctx).LogAttrs(ctx, level, msg, attrs...)
}

func (l *queryLogger) logger(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, l.base)
}
