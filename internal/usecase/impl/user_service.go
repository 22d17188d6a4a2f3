package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "ventas/internal/delivery/context"
	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/repository"
	"ventas/internal/errors"
	"ventas/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

type userService struct {
	txManager repository.TransactionManager
	userRepo  repository.UserRepository
	logger    *slog.Logger
	now       func() time.Time
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Logger    *slog.Logger
}

// NewUserService is the constructor for userService.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager: params.TxManager,
		userRepo:  params.UserRepo,
		logger:    params.Logger,
		now:       time.Now,
	}
}

func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, userLookupError(err)
	}

	return user, nil
}

func (srv *userService) UpdateUser(ctx context.Context, actorID, userID uuid.UUID, input *usecase.UpdateUserInput) (*entity.User, error) {
	if actorID == userID {
		return nil, domainerrors.ErrForbidden.WithDetails("admins cannot change their own account")
	}
	if input.Role != nil && !input.Role.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("role must be one of customer, operator, admin")
	}

	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		change := repository.AccessChange{Role: input.Role, Disabled: input.Disabled}
		if err := repoFactory.UserRepo().UpdateAccess(ctx, userID, change, srv.now().UTC()); err != nil {
			return userLookupError(err)
		}

		if input.Disabled != nil && *input.Disabled {
			if _, err := repoFactory.SessionRepo().RevokeAllByUserID(ctx, userID); err != nil {
				return errors.Wrap(err, "failed to revoke sessions of disabled user")
			}
		}

		user, err := repoFactory.UserRepo().FindByID(ctx, userID)
		if err != nil {
			return userLookupError(err)
		}
		updated = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to update user", slog.Any("user_id", userID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("User updated",
		slog.Any("user_id", userID),
		slog.Any("actor_id", actorID),
		slog.String("role", updated.Role.String()),
		slog.Bool("disabled", updated.Disabled),
	)

	return updated, nil
}

// ReinstateUser clears the compromise flag. Revoked sessions stay revoked.
func (srv *userService) ReinstateUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	var (
		reinstated *entity.User
		cleared    bool
	)
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		cleared, err = repoFactory.UserRepo().ClearCompromised(ctx, userID, srv.now().UTC())
		if err != nil {
			return errors.Wrap(err, "failed to reinstate user")
		}

		reinstated, err = repoFactory.UserRepo().FindByID(ctx, userID)
		if err != nil {
			return userLookupError(err)
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to reinstate user", slog.Any("user_id", userID), slog.Any("error", err))

		return nil, err
	}

	if cleared {
		srv.log(ctx).Warn("Compromised account reinstated", slog.Any("user_id", userID))
	}

	return reinstated, nil
}

func userLookupError(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return domainerrors.ErrUserNotFound
	}

	return errors.Wrap(err, "failed to load user")
}
