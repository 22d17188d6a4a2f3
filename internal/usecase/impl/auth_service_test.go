package impl

import (
	"context"
	"net/http"
	"testing"
	"time"

	"ventas/internal/domain/constants"
	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/domain/service"
	"ventas/internal/errors"
	"ventas/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func registerAndLogin(t *testing.T, f *testFixture, reqCtx entity.RequestContext) (*entity.User, *usecase.TokenPair) {
	t.Helper()
	ctx := context.Background()

	registered, err := f.auth.Register(ctx, &usecase.RegisterInput{
		Email:     "alice@example.com",
		Password:  "secret1",
		FirstName: "Alice",
	})
	require.NoError(t, err)

	pair, err := f.auth.Login(ctx, &usecase.LoginInput{
		Email:    "alice@example.com",
		Password: "secret1",
		Context:  reqCtx,
	})
	require.NoError(t, err)

	return registered.User, pair
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	f := newTestFixture(t)

	user, pair := registerAndLogin(t, f, deviceA)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, entity.RoleCustomer, user.Role)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.True(t, f.hasher.Check("secret1", user.PasswordHash))

	claims, err := f.tokens.Verify(pair.AccessToken, service.TokenClassAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, string(entity.RoleCustomer), claims.Role)

	_, err = f.tokens.Verify(pair.RefreshToken, service.TokenClassRefresh)
	require.NoError(t, err)

	sessions, err := f.sessions.ListSessions(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, deviceA.IPAddress, sessions[0].IPAddress)
	assert.Equal(t, deviceA.Fingerprint(), sessions[0].FingerprintHash)
	assert.Equal(t, hashRefreshToken(pair.RefreshToken), sessions[0].TokenHash)

	assert.Equal(t, 1, f.metrics.auth["register/success"])
	assert.Equal(t, 1, f.metrics.auth["login/success"])
}

func TestAuthService_Register_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	f := newTestFixture(t)
	registerAndLogin(t, f, deviceA)

	_, err := f.auth.Register(context.Background(), &usecase.RegisterInput{
		Email:    "  ALICE@Example.com ",
		Password: "another1",
	})

	require.ErrorIs(t, err, domainerrors.ErrEmailAlreadyRegistered)
	requireAppError(t, err, http.StatusConflict, "EMAIL_ALREADY_REGISTERED")
	assert.Equal(t, 1, f.metrics.auth["register/rejected"])
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	f := newTestFixture(t)

	_, err := f.auth.Register(context.Background(), &usecase.RegisterInput{
		Email:    "bob@example.com",
		Password: "abc",
	})

	require.ErrorIs(t, err, domainerrors.ErrPasswordStrength)
	assert.Empty(t, f.store.users)
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		mutate   func(u *entity.User)
	}{
		{name: "unknown email", email: "nobody@example.com", password: "secret1"},
		{name: "wrong password", email: "alice@example.com", password: "secret2"},
		{name: "disabled account", email: "alice@example.com", password: "secret1", mutate: func(u *entity.User) { u.Disabled = true }},
		{name: "compromised account", email: "alice@example.com", password: "secret1", mutate: func(u *entity.User) { u.Compromised = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFixture(t)
			ctx := context.Background()

			out, err := f.auth.Register(ctx, &usecase.RegisterInput{Email: "alice@example.com", Password: "secret1"})
			require.NoError(t, err)
			if tt.mutate != nil {
				user := f.store.users[out.User.ID]
				tt.mutate(&user)
				f.store.users[out.User.ID] = user
			}

			pair, err := f.auth.Login(ctx, &usecase.LoginInput{Email: tt.email, Password: tt.password, Context: deviceA})

			assert.Nil(t, pair)
			require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
			requireAppError(t, err, http.StatusUnauthorized, "INVALID_CREDENTIALS")
			assert.Empty(t, f.store.sessions)
			assert.Equal(t, 1, f.metrics.auth["login/rejected"])
		})
	}
}

func TestAuthService_RefreshToken_RotatesAndRejectsPredecessor(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	user, first := registerAndLogin(t, f, deviceA)

	second, err := f.auth.RefreshToken(ctx, &usecase.RefreshTokenInput{RefreshToken: first.RefreshToken, Context: deviceA})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	// The successor works exactly once.
	third, err := f.auth.RefreshToken(ctx, &usecase.RefreshTokenInput{RefreshToken: second.RefreshToken, Context: deviceA})
	require.NoError(t, err)

	sessions, err := f.sessions.ListSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.False(t, sessions[0].Revoked)
	assert.Equal(t, hashRefreshToken(third.RefreshToken), sessions[0].TokenHash)
	assert.True(t, sessions[1].Revoked)
	assert.True(t, sessions[2].Revoked)
	require.NotNil(t, sessions[2].LastUsedAt)

	for _, stale := range []string{first.RefreshToken, second.RefreshToken} {
		_, err := f.auth.RefreshToken(ctx, &usecase.RefreshTokenInput{RefreshToken: stale, Context: deviceA})
		requireAppError(t, err, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN")
	}
}

func TestAuthService_RefreshToken_ForeignContextCompromisesAccount(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	user, pair := registerAndLogin(t, f, deviceA)

	out, err := f.auth.RefreshToken(ctx, &usecase.RefreshTokenInput{RefreshToken: pair.RefreshToken, Context: deviceB})

	assert.Nil(t, out)
	require.ErrorIs(t, err, domainerrors.ErrCompromisedSession)
	// On the wire it looks like any other rejected refresh token.
	requireAppError(t, err, http.StatusUnauthorized, domainerrors.ErrInvalidRefreshToken.ErrorCode())

	stored := f.store.user(user.ID)
	assert.True(t, stored.Compromised)
	assert.NotNil(t, stored.CompromisedAt)

	sessions, err := f.sessions.ListSessions(ctx, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, sessions)
	for _, session := range sessions {
		assert.True(t, session.Revoked)
	}

	assert.Equal(t, 1, f.metrics.compromised)
	assert.Equal(t, 1, f.metrics.auth["refresh/compromised"])
	assert.Contains(t, f.publisher.types(), constants.EventAccountCompromised)
	f.notifier.AssertCalled(t, "SendTopicNotification", mock.Anything, constants.TopicSecurityAlerts, mock.Anything, mock.Anything, mock.Anything)

	// The account can no longer log in either.
	_, err = f.auth.Login(ctx, &usecase.LoginInput{Email: "alice@example.com", Password: "secret1", Context: deviceA})
	require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_RefreshToken_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		token   func(t *testing.T, f *testFixture, user *entity.User, pair *usecase.TokenPair) string
		prepare func(f *testFixture, user *entity.User)
		code    string
		target  error
	}{
		{
			name:   "access token presented as refresh token",
			token:  func(_ *testing.T, _ *testFixture, _ *entity.User, pair *usecase.TokenPair) string { return pair.AccessToken },
			code:   "TOKEN_INVALID",
			target: domainerrors.ErrTokenInvalid,
		},
		{
			name:   "garbage",
			token:  func(_ *testing.T, _ *testFixture, _ *entity.User, _ *usecase.TokenPair) string { return "not-a-jwt" },
			code:   "TOKEN_INVALID",
			target: domainerrors.ErrTokenInvalid,
		},
		{
			name: "signed but never stored",
			token: func(t *testing.T, f *testFixture, user *entity.User, _ *usecase.TokenPair) string {
				token, err := f.tokens.IssueRefreshToken(user.ID)
				require.NoError(t, err)

				return token
			},
			code:   "INVALID_REFRESH_TOKEN",
			target: domainerrors.ErrInvalidRefreshToken,
		},
		{
			name:  "session past its expiry",
			token: func(_ *testing.T, _ *testFixture, _ *entity.User, pair *usecase.TokenPair) string { return pair.RefreshToken },
			prepare: func(f *testFixture, _ *entity.User) {
				f.auth.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
			},
			code:   "INVALID_REFRESH_TOKEN",
			target: domainerrors.ErrInvalidRefreshToken,
		},
		{
			name:  "account disabled after login",
			token: func(_ *testing.T, _ *testFixture, _ *entity.User, pair *usecase.TokenPair) string { return pair.RefreshToken },
			prepare: func(f *testFixture, user *entity.User) {
				stored := f.store.users[user.ID]
				stored.Disabled = true
				f.store.users[user.ID] = stored
			},
			code:   "INVALID_REFRESH_TOKEN",
			target: domainerrors.ErrInvalidRefreshToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFixture(t)
			user, pair := registerAndLogin(t, f, deviceA)
			if tt.prepare != nil {
				tt.prepare(f, user)
			}

			out, err := f.auth.RefreshToken(context.Background(), &usecase.RefreshTokenInput{
				RefreshToken: tt.token(t, f, user, pair),
				Context:      deviceA,
			})

			assert.Nil(t, out)
			require.ErrorIs(t, err, tt.target)
			requireAppError(t, err, http.StatusUnauthorized, tt.code)
			assert.False(t, errors.Is(err, domainerrors.ErrCompromisedSession))
			assert.False(t, f.store.user(user.ID).Compromised)
		})
	}
}

func TestAuthService_RefreshToken_UsesCurrentRole(t *testing.T) {
	f := newTestFixture(t)
	user, pair := registerAndLogin(t, f, deviceA)

	stored := f.store.users[user.ID]
	stored.Role = entity.RoleOperator
	f.store.users[user.ID] = stored

	renewed, err := f.auth.RefreshToken(context.Background(), &usecase.RefreshTokenInput{RefreshToken: pair.RefreshToken, Context: deviceA})
	require.NoError(t, err)

	claims, err := f.tokens.Verify(renewed.AccessToken, service.TokenClassAccess)
	require.NoError(t, err)
	assert.Equal(t, string(entity.RoleOperator), claims.Role)
}

func TestAuthService_Logout(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	user, pair := registerAndLogin(t, f, deviceA)

	require.NoError(t, f.auth.Logout(ctx, &usecase.LogoutInput{RefreshToken: pair.RefreshToken}))

	sessions, err := f.sessions.ListSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].Revoked)

	// Unknown and repeated tokens are not errors.
	require.NoError(t, f.auth.Logout(ctx, &usecase.LogoutInput{RefreshToken: "unknown"}))
	require.NoError(t, f.auth.Logout(ctx, &usecase.LogoutInput{RefreshToken: pair.RefreshToken}))
}

func TestAuthService_Login_SessionStoreFailure(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, &usecase.RegisterInput{Email: "carol@example.com", Password: "secret1"})
	require.NoError(t, err)
	f.store.failOn("sessions.Create", errStoreDown)

	pair, err := f.auth.Login(ctx, &usecase.LoginInput{Email: "carol@example.com", Password: "secret1", Context: deviceA})

	assert.Nil(t, pair)
	require.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 1, f.metrics.auth["login/error"])
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, resultSuccess, outcome(nil))
	assert.Equal(t, resultCompromised, outcome(errors.Wrap(domainerrors.ErrCompromisedSession, "x")))
	assert.Equal(t, resultRejected, outcome(errors.Wrap(domainerrors.ErrInvalidRefreshToken, "x")))
	assert.Equal(t, resultError, outcome(errStoreDown))
	assert.Equal(t, resultError, outcome(domainerrors.NewDatabaseExecuteError(errStoreDown, "boom")))
}
