package usecase

import (
	"context"
	"time"

	"ventas/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateSessionInput defines the data required to open a session at login.
type CreateSessionInput struct {
	UserID       uuid.UUID
	RefreshToken string
	ExpiresAt    time.Time
	Context      entity.RequestContext
}

// RotateSessionInput defines a rotation: Stored is revoked and replaced by a
// session for NewRefreshToken bound to the same device context.
type RotateSessionInput struct {
	Stored          *entity.Session
	NewRefreshToken string
	ExpiresAt       time.Time
}

// SessionManager defines the lifecycle of refresh-token sessions and the
// reaction to refresh attempts from a foreign device context.
type SessionManager interface {
	CreateSession(ctx context.Context, input *CreateSessionInput) (*entity.Session, error)
	GetSessionByToken(ctx context.Context, refreshToken string) (*entity.Session, error)

	// ValidateContext fails with ErrCompromisedSession when stored is revoked or was
	// issued to another device context. The account is marked compromised first.
	ValidateContext(ctx context.Context, stored *entity.Session, reqCtx entity.RequestContext) error

	RotateSession(ctx context.Context, input *RotateSessionInput) (*entity.Session, error)
	ListSessions(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error)

	// RevokeSession reports false when the session does not exist or belongs to someone else.
	RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) (bool, error)

	RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int, error)
	MarkAccountCompromised(ctx context.Context, userID uuid.UUID) error
	CleanupExpiredSessions(ctx context.Context, olderThan time.Time) (int, error)
}
