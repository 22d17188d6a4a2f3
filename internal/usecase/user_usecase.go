package usecase

import (
	"context"

	"ventas/internal/domain/entity"

	"github.com/google/uuid"
)

// UpdateUserInput carries the administrative fields of an account. Nil fields are left unchanged.
type UpdateUserInput struct {
	Role     *entity.Role
	Disabled *bool
}

// UserUsecase defines profile lookup and account administration.
type UserUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	// UpdateUser changes role or disabled state. Disabling revokes every session.
	// Admins cannot change their own account.
	UpdateUser(ctx context.Context, actorID, userID uuid.UUID, input *UpdateUserInput) (*entity.User, error)

	// ReinstateUser clears the compromised flag so the owner can log in again.
	ReinstateUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)
}
