// Package context carries request-scoped values between echo and the service layer.
package context

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HeaderXRequestID is the HTTP header name for request ID.
const HeaderXRequestID = "X-Request-Id"

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keyLogger
	keyUserID
)

// echoKeyRequestID is where the id lives on echo.Context for the response envelope.
const echoKeyRequestID = "request_id"

// GetRequestID returns the id assigned by the request-id middleware, or a fresh
// one for contexts that never went through it.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(echoKeyRequestID).(string); ok && id != "" {
		return id
	}

	return uuid.NewString()
}

func SetRequestID(c echo.Context, requestID string) {
	c.Set(echoKeyRequestID, requestID)
}

// GetRequestIDFromContext returns "" outside a request.
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)

	return id
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// GetLogger returns the request-scoped logger, or nil outside a request.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(keyLogger).(*slog.Logger)

	return logger
}

// GetLoggerOrDefault is GetLogger with a fallback for background work.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger := GetLogger(ctx); logger != nil {
		return logger
	}

	return fallback
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// GetUserIDFromContext returns the authenticated caller, if any.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(keyUserID).(uuid.UUID)

	return id, ok
}

// AttachUserID records the authenticated caller on the request context and
// tags the request-scoped logger with it.
func AttachUserID(c echo.Context, userID uuid.UUID) {
	req := c.Request()
	ctx := context.WithValue(req.Context(), keyUserID, userID)
	if logger := GetLogger(ctx); logger != nil {
		ctx = WithLogger(ctx, logger.With(slog.String("user_id", userID.String())))
	}

	c.SetRequest(req.WithContext(ctx))
}
