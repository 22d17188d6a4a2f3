package middleware

import (
	"slices"
	"strings"

	deliverycontext "ventas/internal/delivery/context"
	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/service"
	"ventas/internal/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	contextKeyUserID = "userID"
	contextKeyRole   = "role"
	bearerPrefix     = "Bearer "
)

// AuthMiddleware provides middleware for JWT authentication and authorization.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the bearer access token and stores the caller on the context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return errors.Wrap(domainerrors.ErrTokenInvalid, "authorization header is missing")
		}

		tokenString, ok := strings.CutPrefix(authHeader, bearerPrefix)
		if !ok || tokenString == "" {
			return errors.Wrap(domainerrors.ErrTokenInvalid, "authorization header is not a bearer token")
		}

		// Refresh tokens are signed with a different key and fail here.
		claims, err := m.tokenSvc.Verify(tokenString, service.TokenClassAccess)
		if err != nil {
			return errors.Wrap(err, "failed to verify access token")
		}

		c.Set(contextKeyUserID, claims.UserID)
		c.Set(contextKeyRole, entity.Role(claims.Role))
		deliverycontext.AttachUserID(c, claims.UserID)

		return next(c)
	}
}

// RequireRole allows the request through only when the caller holds one of roles.
// It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := GetRole(c)
			if !ok || !slices.Contains(roles, role) {
				return errors.Wrapf(domainerrors.ErrForbidden, "role %q not allowed", role)
			}

			return next(c)
		}
	}
}

// GetUserID returns the authenticated caller's id.
func GetUserID(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(contextKeyUserID).(uuid.UUID)

	return userID, ok
}

// GetRole returns the authenticated caller's role.
func GetRole(c echo.Context) (entity.Role, bool) {
	role, ok := c.Get(contextKeyRole).(entity.Role)

	return role, ok
}
