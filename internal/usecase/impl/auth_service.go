// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "ventas/internal/delivery/context"
	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/repository"
	"ventas/internal/domain/service"
	"ventas/internal/errors"
	"ventas/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo     repository.UserRepository
	sessions     usecase.SessionManager
	hasher       service.PasswordHasher
	tokenService service.TokenService
	metrics      service.MetricsRecorder
	logger       *slog.Logger
	now          func() time.Time
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Sessions     usecase.SessionManager
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Metrics      service.MetricsRecorder
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:     params.UserRepo,
		sessions:     params.Sessions,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		metrics:      params.Metrics,
		logger:       params.Logger,
		now:          time.Now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a customer account with a bcrypt-hashed password.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (output *usecase.RegisterOutput, err error) {
	defer func() { srv.metrics.AuthAttempt("register", outcome(err)) }()

	email := entity.NormalizeEmail(input.Email)
	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	// 1. Enforce the password policy before touching the store.
	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", email), slog.Any("error", err))

		return nil, errors.Wrap(err, "password does not meet requirements")
	}

	// 2. Reject known emails. The unique index still guards concurrent registrations.
	_, err = srv.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, errors.Wrap(domainerrors.ErrEmailAlreadyRegistered, "registration rejected")
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Error("Failed to look up email during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to check email")
	}

	// 3. Hash and persist.
	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password")
	}

	now := srv.now().UTC()
	user := &entity.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         entity.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := srv.userRepo.Create(ctx, user); err != nil {
		srv.log(ctx).Warn("Failed to create user", slog.String("email", email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create user")
	}
	srv.log(ctx).Info("Registration completed", slog.Any("user_id", user.ID))

	return &usecase.RegisterOutput{User: user}, nil
}

// Login exchanges credentials for a token pair and opens a session for the caller's device.
// Unknown, disabled and compromised accounts are indistinguishable from a wrong password.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (pair *usecase.TokenPair, err error) {
	defer func() { srv.metrics.AuthAttempt("login", outcome(err)) }()

	email := entity.NormalizeEmail(input.Email)
	srv.log(ctx).Debug("Starting user login", slog.String("email", email))

	// 1. Load the account.
	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed", slog.String("email", email), slog.String("reason", "unknown email"))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	// 2. Check account state and password.
	if !user.CanAuthenticate() {
		srv.log(ctx).Warn("Login failed", slog.Any("user_id", user.ID), slog.String("reason", "account blocked"))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}
	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.Any("user_id", user.ID), slog.String("reason", "password mismatch"))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	// 3. Issue tokens and open the session.
	pair, err = srv.issueTokenPair(user)
	if err != nil {
		return nil, err
	}

	if _, err := srv.sessions.CreateSession(ctx, &usecase.CreateSessionInput{
		UserID:       user.ID,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    srv.now().Add(srv.tokenService.RefreshTokenTTL()),
		Context:      input.Context,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to create session during login")
	}
	srv.log(ctx).Debug("User logged in successfully", slog.Any("user_id", user.ID))

	return pair, nil
}

// RefreshToken rotates a refresh token. The role is re-read so new access
// tokens always carry the account's current authorization.
func (srv *authService) RefreshToken(ctx context.Context, input *usecase.RefreshTokenInput) (pair *usecase.TokenPair, err error) {
	defer func() { srv.metrics.AuthAttempt("refresh", outcome(err)) }()

	srv.log(ctx).Info("Attempting to refresh access token")

	// 1. Signature, expiry and token class.
	claims, err := srv.tokenService.Verify(input.RefreshToken, service.TokenClassRefresh)
	if err != nil {
		return nil, errors.Wrap(err, "invalid refresh token")
	}

	// 2. Server-side session.
	stored, err := srv.sessions.GetSessionByToken(ctx, input.RefreshToken)
	if err != nil {
		if errors.Is(err, domainerrors.ErrSessionNotFound) {
			return nil, errors.Wrap(domainerrors.ErrInvalidRefreshToken, "session not found")
		}

		return nil, errors.Wrap(err, "failed to load session")
	}
	if stored.UserID != claims.UserID || stored.IsExpired(srv.now()) {
		return nil, errors.Wrap(domainerrors.ErrInvalidRefreshToken, "session expired or mismatched")
	}

	// 3. Device context. A mismatch has already locked the account when this fails.
	if err := srv.sessions.ValidateContext(ctx, stored, input.Context); err != nil {
		return nil, errors.Wrap(err, "session context rejected")
	}

	// 4. Current account state.
	user, err := srv.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrInvalidRefreshToken, "user no longer exists")
		}

		return nil, errors.Wrap(err, "failed to find user")
	}
	if !user.CanAuthenticate() {
		return nil, errors.Wrap(domainerrors.ErrInvalidRefreshToken, "account blocked")
	}

	// 5. New pair and rotation.
	pair, err = srv.issueTokenPair(user)
	if err != nil {
		return nil, err
	}

	if _, err := srv.sessions.RotateSession(ctx, &usecase.RotateSessionInput{
		Stored:          stored,
		NewRefreshToken: pair.RefreshToken,
		ExpiresAt:       srv.now().Add(srv.tokenService.RefreshTokenTTL()),
	}); err != nil {
		return nil, errors.Wrap(err, "failed to rotate session")
	}
	srv.log(ctx).Info("Refresh token rotated", slog.Any("user_id", user.ID))

	return pair, nil
}

// Logout revokes the session behind a refresh token. Unknown tokens are not an error.
func (srv *authService) Logout(ctx context.Context, input *usecase.LogoutInput) (err error) {
	defer func() { srv.metrics.AuthAttempt("logout", outcome(err)) }()

	srv.log(ctx).Info("Attempting to log out")

	if _, verifyErr := srv.tokenService.Verify(input.RefreshToken, service.TokenClassRefresh); verifyErr != nil {
		// An expired token still identifies a session worth revoking.
		srv.log(ctx).Warn("Logout with invalid token", slog.Any("error", verifyErr))
	}

	stored, err := srv.sessions.GetSessionByToken(ctx, input.RefreshToken)
	if err != nil {
		if errors.Is(err, domainerrors.ErrSessionNotFound) {
			return nil
		}

		return errors.Wrap(err, "failed to load session")
	}

	if _, err := srv.sessions.RevokeSession(ctx, stored.UserID, stored.ID); err != nil {
		return errors.Wrap(err, "failed to revoke session")
	}
	srv.log(ctx).Info("Successfully logged out", slog.Any("user_id", stored.UserID))

	return nil
}

func (srv *authService) issueTokenPair(user *entity.User) (*usecase.TokenPair, error) {
	accessToken, err := srv.tokenService.IssueAccessToken(user.ID, user.Role.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, err := srv.tokenService.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue refresh token")
	}

	return &usecase.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
