package handler

import (
	"net/http"

	"ventas/internal/delivery/api/response"

	"github.com/labstack/echo/v4"
)

// HealthCheck answers liveness probes. It does not touch the database.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}
