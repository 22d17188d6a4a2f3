package repository

import (
	"context"
	"errors"
	"time"

	"ventas/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session row does not exist.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines persistence for refresh-token sessions.
// Rows are revoked rather than deleted so that users can audit past sessions.
type SessionRepository interface {
	// Create persists a new active session.
	Create(ctx context.Context, session *entity.Session) error

	// FindByTokenHash retrieves a session by the hash of its refresh token.
	FindByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error)

	// FindByID retrieves a session by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error)

	// ListByUserID returns every session of a user, revoked ones included, newest first.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error)

	// Revoke marks a still-active session as revoked and stamps last_used_at.
	// It reports false when the session was already revoked, which is how a
	// concurrent rotation of the same token loses the race.
	Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// RevokeForUser revokes a session only if it belongs to userID.
	// It reports false when no owned session matched.
	RevokeForUser(ctx context.Context, userID, id uuid.UUID) (bool, error)

	// RevokeAllByUserID revokes every active session of the user and returns how many changed.
	RevokeAllByUserID(ctx context.Context, userID uuid.UUID) (int, error)

	// DeleteExpired removes sessions that expired before the given time.
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}
