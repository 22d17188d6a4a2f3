package postgres

import (
	"context"
	"time"

	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/repository"
	"ventas/internal/errors"
	"ventas/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

// sessionRepository implements the domain.SessionRepository interface.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new session, representing one issued refresh token.
func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrInvalidRefreshToken.WrapMessage("refresh token already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("invalid user reference")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	// Update the entity with generated values
	session.ID = sessionM.ID
	session.CreatedAt = sessionM.CreatedAt

	return nil
}

// FindByTokenHash retrieves a session by the hash of its refresh token.
// Revocation state is returned as stored; callers decide what it means.
func (repo *sessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error) {
	var sessionM model.SessionModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("token_hash = ?", tokenHash).
		First(&sessionM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session by token hash")
	}

	return toSessionDomain(&sessionM), nil
}

// FindByID retrieves a session by its unique ID.
func (repo *sessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	var sessionM model.SessionModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("id = ?", id).
		First(&sessionM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session by id")
	}

	return toSessionDomain(&sessionM), nil
}

// ListByUserID returns all sessions of a user, newest first. It reads the
// primary so revocations from a compromise show up at once.
func (repo *sessionRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Session, error) {
	var sessionModels []*model.SessionModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sessionModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list sessions")
	}

	sessions := make([]*entity.Session, 0, len(sessionModels))
	for _, sessionM := range sessionModels {
		sessions = append(sessions, toSessionDomain(sessionM))
	}

	return sessions, nil
}

// Revoke flips an active session to revoked. The revoked = false guard makes
// the update a compare-and-set, so only one concurrent rotation can win.
func (repo *sessionRepository) Revoke(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ? AND revoked = ?", id, false).
		Updates(map[string]any{
			"revoked":      true,
			"last_used_at": at,
		})
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to revoke session")
	}

	return result.RowsAffected > 0, nil
}

// RevokeForUser revokes a session owned by userID. Already revoked rows still match.
func (repo *sessionRepository) RevokeForUser(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("revoked", true)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to revoke session")
	}

	return result.RowsAffected > 0, nil
}

// RevokeAllByUserID revokes every active session of the user.
func (repo *sessionRepository) RevokeAllByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.SessionModel{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true)
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to revoke sessions")
	}

	return int(result.RowsAffected), nil
}

// DeleteExpired removes sessions whose refresh window closed before the given time.
func (repo *sessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	result := repo.db.WithContext(ctx).
		Where("expires_at < ?", before).
		Delete(&model.SessionModel{})
	if result.Error != nil {
		return 0, domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete expired sessions")
	}

	return int(result.RowsAffected), nil
}

// --- Mapper Functions ---

// toSessionDomain converts a GORM SessionModel to a domain Session entity.
func toSessionDomain(data *model.SessionModel) *entity.Session {
	if data == nil {
		return nil
	}

	return &entity.Session{
		ID:              data.ID,
		UserID:          data.UserID,
		TokenHash:       data.TokenHash,
		ExpiresAt:       data.ExpiresAt,
		UserAgent:       data.UserAgent,
		IPAddress:       data.IPAddress,
		DeviceName:      data.DeviceName,
		FingerprintHash: data.FingerprintHash,
		Revoked:         data.Revoked,
		CreatedAt:       data.CreatedAt,
		LastUsedAt:      data.LastUsedAt,
	}
}

// fromSessionDomain converts a domain Session entity to a GORM SessionModel.
func fromSessionDomain(data *entity.Session) *model.SessionModel {
	if data == nil {
		return nil
	}

	return &model.SessionModel{
		ID:              data.ID,
		UserID:          data.UserID,
		TokenHash:       data.TokenHash,
		ExpiresAt:       data.ExpiresAt,
		UserAgent:       data.UserAgent,
		IPAddress:       data.IPAddress,
		DeviceName:      data.DeviceName,
		FingerprintHash: data.FingerprintHash,
		Revoked:         data.Revoked,
		CreatedAt:       data.CreatedAt,
		LastUsedAt:      data.LastUsedAt,
	}
}
