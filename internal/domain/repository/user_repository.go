// Package repository declares the persistence ports used by the usecases.
// Lookups that find nothing return the package's Err*NotFound sentinels; the
// usecases translate them into domain errors.
package repository

import (
	"context"
	"errors"
	"time"

	"ventas/internal/domain/entity"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// AccessChange lists the access columns an admin edit may touch. Nil fields
// are left as stored.
type AccessChange struct {
	Role     *entity.Role
	Disabled *bool
}

// UserRepository stores back-office accounts. Reads always hit the primary so
// a compromise flag set a moment ago is never missed.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create fills in the generated ID and timestamps. A taken email yields
	// ErrEmailAlreadyRegistered.
	Create(ctx context.Context, user *entity.User) error

	// UpdateAccess writes only the columns set in change. The compromise flag
	// is never written here.
	UpdateAccess(ctx context.Context, id uuid.UUID, change AccessChange, at time.Time) error

	// ClearCompromised lifts the compromise flag. It reports false when the
	// account was not compromised.
	ClearCompromised(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// MarkCompromised flags the account as compromised at the given time.
	MarkCompromised(ctx context.Context, id uuid.UUID, at time.Time) error
}
