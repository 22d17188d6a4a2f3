package handler

import (
	"log/slog"
	"net/http"

	"ventas/internal/delivery/api/middleware"
	"ventas/internal/delivery/api/response"
	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// UserHandlerParams holds dependencies for UserHandler, injected by Fx.
type UserHandlerParams struct {
	fx.In

	UserUC usecase.UserUsecase
	Logger *slog.Logger
}

// UserHandler serves the caller's profile and account administration.
type UserHandler struct {
	userUC usecase.UserUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler.
func NewUserHandler(params UserHandlerParams) *UserHandler {
	return &UserHandler{
		userUC: params.UserUC,
		logger: params.Logger,
	}
}

// UpdateUserRequest is the admin patch for an account. Omitted fields are kept.
type UpdateUserRequest struct {
	Role     *string `json:"role" validate:"omitempty,oneof=customer operator admin"`
	Disabled *bool   `json:"disabled"`
}

// Me returns the profile of the authenticated caller.
func (h *UserHandler) Me(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenInvalid
	}

	user, err := h.userUC.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newUserResponse(user))
}

// GetUser returns any account by id.
func (h *UserHandler) GetUser(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.userUC.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newUserResponse(user))
}

// UpdateUser changes the role or disabled flag of an account.
func (h *UserHandler) UpdateUser(c echo.Context) error {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenInvalid
	}

	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	input := &usecase.UpdateUserInput{Disabled: req.Disabled}
	if req.Role != nil {
		role := entity.Role(*req.Role)
		input.Role = &role
	}

	user, err := h.userUC.UpdateUser(c.Request().Context(), actorID, userID, input)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newUserResponse(user))
}

// ReinstateUser lifts a compromise lock so the owner can log in again.
func (h *UserHandler) ReinstateUser(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.userUC.ReinstateUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, newUserResponse(user))
}
