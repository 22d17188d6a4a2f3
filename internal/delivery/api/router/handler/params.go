package handler

import (
	"strconv"
	"time"

	domainerrors "ventas/internal/domain/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	return parseID(c.Param(name), name)
}

func parseID(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domainerrors.ErrValidationFailed.WithDetails(name + " must be a UUID")
	}

	return id, nil
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domainerrors.ErrValidationFailed.WithDetails(name + " must be an integer")
	}

	return n, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates, which mean midnight UTC.
func queryTime(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}

	return time.Time{}, domainerrors.ErrValidationFailed.WithDetails(name + " must be RFC 3339 or YYYY-MM-DD")
}

// bindAndValidate decodes the body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails("malformed request body")
	}

	return c.Validate(req)
}
