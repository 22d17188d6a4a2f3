package context

import (
	"strings"

	"ventas/internal/domain/constants"
	"ventas/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// GetRequestContext captures the device context a session is bound to.
// The IP is echo's RealIP, so X-Forwarded-For is honoured behind a proxy.
func GetRequestContext(c echo.Context) entity.RequestContext {
	req := c.Request()

	return entity.RequestContext{
		UserAgent:  req.UserAgent(),
		IPAddress:  c.RealIP(),
		DeviceName: strings.TrimSpace(req.Header.Get(constants.HeaderDeviceName)),
	}
}
