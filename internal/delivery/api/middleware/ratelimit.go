package middleware

import (
	"context"
	"log/slog"
	"math"
	"strconv"

	"ventas/internal/delivery/api/response"
	deliverycontext "ventas/internal/delivery/context"
	"ventas/internal/infra/cache"

	"github.com/labstack/echo/v4"
)

// RateLimiter takes one token from the bucket identified by key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (cache.RateDecision, error)
}

// RateLimitMiddleware throttles callers per IP and route.
type RateLimitMiddleware struct {
	limiter RateLimiter
	logger  *slog.Logger
}

// NewRateLimitMiddleware accepts a nil limiter, in which case every request passes.
func NewRateLimitMiddleware(limiter *cache.TokenBucket, logger *slog.Logger) *RateLimitMiddleware {
	m := &RateLimitMiddleware{logger: logger}
	if limiter != nil {
		m.limiter = limiter
	}

	return m
}

// Handle answers 429 once the caller's bucket is empty. Limiter failures let the request through.
func (m *RateLimitMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.limiter == nil {
			return next(c)
		}

		ctx := c.Request().Context()
		key := c.RealIP() + ":" + c.Path()

		decision, err := m.limiter.Allow(ctx, key)
		if err != nil {
			deliverycontext.GetLoggerOrDefault(ctx, m.logger).Warn("Rate limiter unavailable, allowing request",
				slog.String("key", key),
				slog.Any("error", err),
			)

			return next(c)
		}

		header := c.Response().Header()
		header.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		header.Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))

		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			header.Set(echo.HeaderRetryAfter, strconv.Itoa(max(retryAfter, 1)))

			return response.TooManyRequests(c, "RATE_LIMITED", "Too many requests, please retry later")
		}

		return next(c)
	}
}
