package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// HTTPObserver records served requests.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// MetricsMiddleware feeds request counts and latency to an HTTPObserver.
type MetricsMiddleware struct {
	observer HTTPObserver
}

// NewMetricsMiddleware creates a new metrics middleware
func NewMetricsMiddleware(observer HTTPObserver) *MetricsMiddleware {
	return &MetricsMiddleware{observer: observer}
}

// Handle observes the request after the error handler has written the response,
// so the recorded status is the one the client received.
func (m *MetricsMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		m.observer.ObserveHTTP(c.Request().Method, route, c.Response().Status, time.Since(start))

		return err
	}
}
