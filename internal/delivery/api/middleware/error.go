// Package middleware holds the echo middleware specific to the API server.
package middleware

import (
	"log/slog"
	"net/http"

	"ventas/internal/delivery/api/response"
	deliverycontext "ventas/internal/delivery/context"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/errors"

	"github.com/labstack/echo/v4"
)

// ErrorMiddleware is the server's HTTPErrorHandler. Domain errors map to their
// own status and code; anything unrecognised becomes INTERNAL_ERROR with the
// cause kept in the log only.
type ErrorMiddleware struct {
	logger *slog.Logger
}

func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{logger: logger}
}

func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if appErr, ok := errors.AsType[domainerrors.AppError](err); ok {
		if appErr.HTTPCode() >= http.StatusInternalServerError {
			m.logFailure(c, "Request failed", err)
		}
		_ = response.Error(c, appErr.HTTPCode(), appErr.ErrorCode(), appErr.Message(), appErr.Details())

		return
	}

	// Routing and binding errors raised by echo itself.
	if httpErr, ok := errors.AsType[*echo.HTTPError](err); ok {
		message, isString := httpErr.Message.(string)
		if !isString {
			message = http.StatusText(httpErr.Code)
		}
		_ = response.Error(c, httpErr.Code, "HTTP_ERROR", message, nil)

		return
	}

	m.logFailure(c, "Unhandled error", err)
	_ = response.InternalServerError(c, domainerrors.ErrInternalError.ErrorCode(), "Internal server error, please try again later")
}

func (m *ErrorMiddleware) logFailure(c echo.Context, msg string, err error) {
	req := c.Request()
	deliverycontext.GetLoggerOrDefault(req.Context(), m.logger).LogAttrs(req.Context(), slog.LevelError, msg,
		slog.Any("error", err),
		slog.String("method", req.Method),
		slog.String("route", c.Path()),
	)
}
