package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"ventas/config"
	deliverycontext "ventas/internal/delivery/context"
	"ventas/internal/domain/constants"

	"github.com/labstack/echo/v4"
)

// quietRoutes are polled by infrastructure and never access-logged.
var quietRoutes = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// LoggerMiddleware writes one access log line per request. Successful requests
// are only logged in debug mode.
type LoggerMiddleware struct {
	logger *slog.Logger
	debug  bool
}

func NewLoggerMiddleware(logger *slog.Logger, config *config.Config) *LoggerMiddleware {
	return &LoggerMiddleware{
		logger: logger,
		debug:  config.Env.Debug,
	}
}

func (m *LoggerMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			// Commit the error response now so the logged status is final.
			c.Error(err)
		}
		if _, quiet := quietRoutes[c.Path()]; !quiet {
			m.log(c, time.Since(start), err)
		}

		return err
	}
}

func (m *LoggerMiddleware) log(c echo.Context, latency time.Duration, err error) {
	status := c.Response().Status

	level := slog.LevelInfo
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status >= http.StatusBadRequest:
		level = slog.LevelWarn
	case !m.debug:
		return
	}

	req := c.Request()
	attrs := []slog.Attr{
		slog.String("method", req.Method),
		slog.String("route", c.Path()),
		slog.String("uri", req.URL.RequestURI()),
		slog.Int("status", status),
		slog.Duration("latency", latency),
		slog.String("remote_ip", c.RealIP()),
		slog.String("user_agent", req.UserAgent()),
		slog.Int64("bytes_out", c.Response().Size),
	}
	if device := req.Header.Get(constants.HeaderDeviceName); device != "" {
		attrs = append(attrs, slog.String("device_name", device))
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}

	// The request logger carries request_id, and user_id once authenticated.
	ctx := req.Context()
	deliverycontext.GetLoggerOrDefault(ctx, m.logger).LogAttrs(ctx, level, "HTTP request", attrs...)
}
