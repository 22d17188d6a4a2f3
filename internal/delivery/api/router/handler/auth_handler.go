package handler

import (
	"log/slog"
	"net/http"

	"ventas/internal/delivery/api/response"
	deliverycontext "ventas/internal/delivery/context"
	"ventas/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// AuthHandler serves registration, login and token renewal.
type AuthHandler struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC: params.AuthUC,
		logger: params.Logger,
	}
}

// RegisterRequest represents the request body for account registration.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest carries a refresh token for renewal or logout.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Register creates a customer account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	out, err := h.authUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusCreated, newUserResponse(out.User))
}

// Login exchanges credentials for a token pair bound to the caller's device.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.authUC.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Context:  deliverycontext.GetRequestContext(c),
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// RefreshToken rotates the presented refresh token.
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req RefreshTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.authUC.RefreshToken(c.Request().Context(), &usecase.RefreshTokenInput{
		RefreshToken: req.RefreshToken,
		Context:      deliverycontext.GetRequestContext(c),
	})
	if err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, tokenPairResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Logout revokes the session behind the refresh token. Unknown tokens still succeed.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req RefreshTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.authUC.Logout(c.Request().Context(), &usecase.LogoutInput{RefreshToken: req.RefreshToken}); err != nil {
		return err
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Logged out"})
}
