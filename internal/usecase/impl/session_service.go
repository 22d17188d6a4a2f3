package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "ventas/internal/delivery/context"
	"ventas/internal/domain/constants"
	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/repository"
	"ventas/internal/domain/service"
	"ventas/internal/errors"
	"ventas/internal/usecase"
	"ventas/internal/util"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// sessionService implements the SessionManager interface.
type sessionService struct {
	txManager   repository.TransactionManager
	sessionRepo repository.SessionRepository
	publisher   service.EventPublisher
	notifier    service.NotificationService
	metrics     service.MetricsRecorder
	logger      *slog.Logger
	now         func() time.Time
}

// SessionServiceParams holds dependencies for SessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	SessionRepo repository.SessionRepository
	Publisher   service.EventPublisher
	Notifier    service.NotificationService
	Metrics     service.MetricsRecorder
	Logger      *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionManager {
	return &sessionService{
		txManager:   params.TxManager,
		sessionRepo: params.SessionRepo,
		publisher:   params.Publisher,
		notifier:    params.Notifier,
		metrics:     params.Metrics,
		logger:      params.Logger,
		now:         time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// hashRefreshToken is the lookup key of a refresh token. Raw tokens are never stored.
func hashRefreshToken(token string) string {
	return util.SHA256Hex(token)
}

func newSession(userID uuid.UUID, refreshToken string, expiresAt time.Time, reqCtx entity.RequestContext, now time.Time) *entity.Session {
	return &entity.Session{
		ID:              uuid.New(),
		UserID:          userID,
		TokenHash:       hashRefreshToken(refreshToken),
		ExpiresAt:       expiresAt.UTC(),
		UserAgent:       reqCtx.UserAgent,
		IPAddress:       reqCtx.IPAddress,
		DeviceName:      reqCtx.DeviceName,
		FingerprintHash: reqCtx.Fingerprint(),
		CreatedAt:       now.UTC(),
	}
}

// CreateSession persists a new active session bound to the request's device context.
func (srv *sessionService) CreateSession(ctx context.Context, input *usecase.CreateSessionInput) (*entity.Session, error) {
	session := newSession(input.UserID, input.RefreshToken, input.ExpiresAt, input.Context, srv.now())

	if err := srv.sessionRepo.Create(ctx, session); err != nil {
		srv.log(ctx).Error("Failed to create session", slog.Any("user_id", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create session")
	}
	srv.log(ctx).Debug("Session created", slog.Any("user_id", input.UserID), slog.Any("session_id", session.ID))

	return session, nil
}

// GetSessionByToken looks a session up by its raw refresh token.
func (srv *sessionService) GetSessionByToken(ctx context.Context, refreshToken string) (*entity.Session, error) {
	session, err := srv.sessionRepo.FindByTokenHash(ctx, hashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, errors.Wrap(domainerrors.ErrSessionNotFound, "no session for refresh token")
		}

		return nil, errors.Wrap(err, "failed to find session by token")
	}

	return session, nil
}

// ValidateContext compares the request against the context the session was issued to.
// Any mismatch is treated as a stolen token: the whole account is locked down
// before the error is returned.
func (srv *sessionService) ValidateContext(ctx context.Context, stored *entity.Session, reqCtx entity.RequestContext) error {
	reason := contextMismatch(stored, reqCtx)
	if reason == "" {
		return nil
	}

	srv.log(ctx).Warn("Refresh attempt from foreign context",
		slog.Any("user_id", stored.UserID),
		slog.Any("session_id", stored.ID),
		slog.String("reason", reason),
		slog.String("ip_address", reqCtx.IPAddress),
	)

	if err := srv.MarkAccountCompromised(ctx, stored.UserID); err != nil {
		return errors.Wrap(err, "failed to mark account compromised")
	}

	return errors.Wrap(domainerrors.ErrCompromisedSession, reason)
}

// contextMismatch returns why reqCtx cannot use stored, or "" when it can.
// User agent and IP are compared verbatim, so network churn counts as a mismatch.
func contextMismatch(stored *entity.Session, reqCtx entity.RequestContext) string {
	switch {
	case stored.Revoked:
		return "session already revoked"
	case stored.UserAgent != reqCtx.UserAgent:
		return "user agent mismatch"
	case stored.IPAddress != reqCtx.IPAddress:
		return "ip address mismatch"
	case stored.FingerprintHash != reqCtx.Fingerprint():
		return "fingerprint mismatch"
	default:
		return ""
	}
}

// RotateSession revokes the presented session and issues its successor in one transaction.
func (srv *sessionService) RotateSession(ctx context.Context, input *usecase.RotateSessionInput) (*entity.Session, error) {
	now := srv.now()
	successor := newSession(input.Stored.UserID, input.NewRefreshToken, input.ExpiresAt, input.Stored.Context(), now)

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		sessionRepo := repoFactory.SessionRepo()

		// 1. Revoke the predecessor. Losing this update means another refresh already rotated it.
		revoked, err := sessionRepo.Revoke(ctx, input.Stored.ID, now)
		if err != nil {
			return errors.Wrap(err, "failed to revoke session")
		}
		if !revoked {
			return errors.Wrap(domainerrors.ErrInvalidRefreshToken, "session already rotated")
		}

		// 2. Issue the successor with the same device context.
		if err := sessionRepo.Create(ctx, successor); err != nil {
			return errors.Wrap(err, "failed to create successor session")
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidRefreshToken) {
			srv.log(ctx).Warn("Concurrent rotation lost", slog.Any("session_id", input.Stored.ID))
		} else {
			srv.log(ctx).Error("Failed to execute session rotation transaction", slog.Any("session_id", input.Stored.ID), slog.Any("error", err))
		}

		return nil, errors.Wrap(err, "failed to rotate session")
	}

	srv.log(ctx).Debug("Session rotated", slog.Any("previous_session_id", input.Stored.ID), slog.Any("session_id", successor.ID))

	return successor, nil
}

// ListSessions returns the user's sessions newest first, revoked ones included.
func (srv *sessionService) ListSessions(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	sessions, err := srv.sessionRepo.ListByUserID(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to list sessions", slog.Any("user_id", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list sessions")
	}

	return sessions, nil
}

// RevokeSession revokes one of the user's own sessions.
func (srv *sessionService) RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) (bool, error) {
	revoked, err := srv.sessionRepo.RevokeForUser(ctx, userID, sessionID)
	if err != nil {
		srv.log(ctx).Error("Failed to revoke session", slog.Any("user_id", userID), slog.Any("session_id", sessionID), slog.Any("error", err))

		return false, errors.Wrap(err, "failed to revoke session")
	}
	srv.log(ctx).Info("Session revoke requested", slog.Any("user_id", userID), slog.Any("session_id", sessionID), slog.Bool("matched", revoked))

	return revoked, nil
}

// RevokeAllSessions logs the user out everywhere. Repeating it is a no-op.
func (srv *sessionService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := srv.sessionRepo.RevokeAllByUserID(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to revoke all sessions", slog.Any("user_id", userID), slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to revoke all sessions")
	}
	srv.log(ctx).Info("Revoked all sessions", slog.Any("user_id", userID), slog.Int("count", count))

	return count, nil
}

// MarkAccountCompromised flags the user and revokes every session atomically.
func (srv *sessionService) MarkAccountCompromised(ctx context.Context, userID uuid.UUID) error {
	now := srv.now().UTC()
	var revokedCount int

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		// 1. Flag the account.
		if err := repoFactory.UserRepo().MarkCompromised(ctx, userID, now); err != nil {
			return errors.Wrap(err, "failed to flag user")
		}

		// 2. Invalidate every session it holds.
		count, err := repoFactory.SessionRepo().RevokeAllByUserID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to revoke user sessions")
		}
		revokedCount = count

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute compromise transaction", slog.Any("user_id", userID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute compromise transaction")
	}

	srv.metrics.SessionCompromised()
	srv.log(ctx).Warn("Account marked compromised", slog.Any("user_id", userID), slog.Int("revoked_sessions", revokedCount))

	publishBestEffort(ctx, srv.publisher, srv.log(ctx), constants.EventAccountCompromised, map[string]any{
		"user_id":          userID,
		"compromised_at":   now,
		"revoked_sessions": revokedCount,
	})
	notifyBestEffort(ctx, srv.notifier, srv.log(ctx), constants.TopicSecurityAlerts,
		"Account locked",
		"A refresh token was replayed from another device. All sessions were revoked.",
		map[string]string{"user_id": userID.String()},
	)

	return nil
}

// CleanupExpiredSessions deletes sessions whose refresh window closed before olderThan.
func (srv *sessionService) CleanupExpiredSessions(ctx context.Context, olderThan time.Time) (int, error) {
	deleted, err := srv.sessionRepo.DeleteExpired(ctx, olderThan)
	if err != nil {
		srv.log(ctx).Error("Failed to clean up expired sessions", slog.Any("error", err))

		return 0, errors.Wrap(err, "failed to clean up expired sessions")
	}

	return deleted, nil
}
