package handler

import (
	"log/slog"
	"net/http"
	"time"

	"ventas/internal/delivery/api/middleware"
	"ventas/internal/delivery/api/response"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// SessionHandlerParams holds dependencies for SessionHandler, injected by Fx.
type SessionHandlerParams struct {
	fx.In

	SessionUC usecase.SessionManager
	Logger    *slog.Logger
}

// SessionHandler lets a signed-in user review and revoke their own sessions.
type SessionHandler struct {
	sessionUC usecase.SessionManager
	logger    *slog.Logger
	now       func() time.Time
}

// NewSessionHandler is the constructor for SessionHandler.
func NewSessionHandler(params SessionHandlerParams) *SessionHandler {
	return &SessionHandler{
		sessionUC: params.SessionUC,
		logger:    params.Logger,
		now:       time.Now,
	}
}

// ListSessions returns every session of the caller, newest first.
func (h *SessionHandler) ListSessions(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenInvalid
	}

	sessions, err := h.sessionUC.ListSessions(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	now := h.now()
	items := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, newSessionResponse(s, now))
	}

	return response.Success(c, http.StatusOK, map[string]any{"sessions": items})
}

// RevokeSession revokes one of the caller's sessions.
func (h *SessionHandler) RevokeSession(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenInvalid
	}

	sessionID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	revoked, err := h.sessionUC.RevokeSession(c.Request().Context(), userID, sessionID)
	if err != nil {
		return err
	}
	if !revoked {
		return domainerrors.ErrSessionNotFound
	}

	return response.Success(c, http.StatusOK, map[string]any{"revoked": true})
}

// RevokeAllSessions signs the caller out everywhere.
func (h *SessionHandler) RevokeAllSessions(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenInvalid
	}

	n, err := h.sessionUC.RevokeAllSessions(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]int{"revoked": n})
}
