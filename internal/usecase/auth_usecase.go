// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"ventas/internal/domain/entity"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
	Context  entity.RequestContext
}

// RefreshTokenInput defines the data required to renew a token pair.
type RefreshTokenInput struct {
	RefreshToken string
	Context      entity.RequestContext
}

// LogoutInput defines the data required to end a single session.
type LogoutInput struct {
	RefreshToken string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created user's basic information.
type RegisterOutput struct {
	User *entity.User
}

// TokenPair is the access and refresh token pair handed to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthUsecase defines the interface for credential-based authentication.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
	Login(ctx context.Context, input *LoginInput) (*TokenPair, error)
	RefreshToken(ctx context.Context, input *RefreshTokenInput) (*TokenPair, error)
	Logout(ctx context.Context, input *LogoutInput) error
}
