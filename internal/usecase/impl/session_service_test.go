package impl

import (
	"context"
	"sync"
	"testing"
	"time"

	"ventas/internal/domain/constants"
	"ventas/internal/domain/entity"
	domainerrors "ventas/internal/domain/errors"
	"ventas/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(f *testFixture) entity.User {
	user := entity.User{
		ID:           uuid.New(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         entity.RoleCustomer,
	}
	f.store.users[user.ID] = user

	return user
}

func openSession(t *testing.T, f *testFixture, userID uuid.UUID, reqCtx entity.RequestContext) (*entity.Session, string) {
	t.Helper()

	token := "refresh-" + uuid.NewString()
	session, err := f.sessions.CreateSession(context.Background(), &usecase.CreateSessionInput{
		UserID:       userID,
		RefreshToken: token,
		ExpiresAt:    time.Now().Add(time.Hour),
		Context:      reqCtx,
	})
	require.NoError(t, err)

	return session, token
}

func TestSessionService_CreateAndLookup(t *testing.T) {
	f := newTestFixture(t)
	user := seedUser(f)

	created, token := openSession(t, f, user.ID, deviceA)

	assert.NotEqual(t, token, created.TokenHash)
	assert.Len(t, created.TokenHash, 64)
	assert.Equal(t, deviceA.Fingerprint(), created.FingerprintHash)
	assert.False(t, created.Revoked)

	found, err := f.sessions.GetSessionByToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = f.sessions.GetSessionByToken(context.Background(), token+"x")
	require.ErrorIs(t, err, domainerrors.ErrSessionNotFound)
}

func TestSessionService_ValidateContext(t *testing.T) {
	tests := []struct {
		name        string
		reqCtx      entity.RequestContext
		revoked     bool
		compromised bool
	}{
		{name: "same device", reqCtx: deviceA},
		{name: "different ip", reqCtx: deviceB, compromised: true},
		{name: "different user agent", reqCtx: entity.RequestContext{UserAgent: "curl/8.0", IPAddress: deviceA.IPAddress, DeviceName: deviceA.DeviceName}, compromised: true},
		{name: "different device name", reqCtx: entity.RequestContext{UserAgent: deviceA.UserAgent, IPAddress: deviceA.IPAddress, DeviceName: "phone"}, compromised: true},
		{name: "revoked session replayed", reqCtx: deviceA, revoked: true, compromised: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFixture(t)
			ctx := context.Background()
			user := seedUser(f)
			stored, _ := openSession(t, f, user.ID, deviceA)
			openSession(t, f, user.ID, deviceA)
			stored.Revoked = tt.revoked

			err := f.sessions.ValidateContext(ctx, stored, tt.reqCtx)

			if !tt.compromised {
				require.NoError(t, err)
				assert.False(t, f.store.user(user.ID).Compromised)

				return
			}

			require.ErrorIs(t, err, domainerrors.ErrCompromisedSession)
			assert.True(t, f.store.user(user.ID).Compromised)
			sessions, err := f.sessions.ListSessions(ctx, user.ID)
			require.NoError(t, err)
			for _, session := range sessions {
				assert.True(t, session.Revoked)
			}
		})
	}
}

func TestSessionService_MarkAccountCompromised_RollsBackOnFailure(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	user := seedUser(f)
	stored, _ := openSession(t, f, user.ID, deviceA)
	f.store.failOn("sessions.RevokeAllByUserID", errStoreDown)

	err := f.sessions.MarkAccountCompromised(ctx, user.ID)

	require.ErrorIs(t, err, errStoreDown)
	assert.False(t, f.store.user(user.ID).Compromised)
	assert.Nil(t, f.store.user(user.ID).CompromisedAt)
	assert.False(t, f.store.sessions[stored.ID].Revoked)
	assert.Zero(t, f.metrics.compromised)
	assert.Empty(t, f.publisher.events)

	// ValidateContext propagates the failure rather than reporting a compromise it could not record.
	err = f.sessions.ValidateContext(ctx, stored, deviceB)
	require.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, domainerrors.ErrCompromisedSession)
}

func TestSessionService_MarkAccountCompromised_KeepsFirstTimestamp(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	user := seedUser(f)
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	f.sessions.now = func() time.Time { return first }
	require.NoError(t, f.sessions.MarkAccountCompromised(ctx, user.ID))
	f.sessions.now = func() time.Time { return first.Add(time.Hour) }
	require.NoError(t, f.sessions.MarkAccountCompromised(ctx, user.ID))

	stored := f.store.user(user.ID)
	require.NotNil(t, stored.CompromisedAt)
	assert.True(t, first.Equal(*stored.CompromisedAt))
	assert.Equal(t, 2, f.metrics.compromised)
	assert.Equal(t, []string{constants.EventAccountCompromised, constants.EventAccountCompromised}, f.publisher.types())
}

func TestSessionService_RotateSession(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	user := seedUser(f)
	stored, _ := openSession(t, f, user.ID, deviceA)

	successor, err := f.sessions.RotateSession(ctx, &usecase.RotateSessionInput{
		Stored:          stored,
		NewRefreshToken: "next-token",
		ExpiresAt:       time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	assert.NotEqual(t, stored.ID, successor.ID)
	assert.Equal(t, stored.FingerprintHash, successor.FingerprintHash)
	assert.Equal(t, stored.IPAddress, successor.IPAddress)
	assert.Equal(t, hashRefreshToken("next-token"), successor.TokenHash)

	predecessor := f.store.sessions[stored.ID]
	assert.True(t, predecessor.Revoked)
	assert.NotNil(t, predecessor.LastUsedAt)

	// A second rotation of the same predecessor loses.
	_, err = f.sessions.RotateSession(ctx, &usecase.RotateSessionInput{
		Stored:          stored,
		NewRefreshToken: "other-token",
		ExpiresAt:       time.Now().Add(time.Hour),
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidRefreshToken)
	_, err = f.sessions.GetSessionByToken(ctx, "other-token")
	require.ErrorIs(t, err, domainerrors.ErrSessionNotFound)
}

func TestSessionService_RotateSession_ConcurrentRefreshMintsOneSuccessor(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	user := seedUser(f)
	stored, _ := openSession(t, f, user.ID, deviceA)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		losers    int
	)
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			_, err := f.sessions.RotateSession(ctx, &usecase.RotateSessionInput{
				Stored:          stored,
				NewRefreshToken: "concurrent-" + uuid.NewString(),
				ExpiresAt:       time.Now().Add(time.Hour),
			})

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if assert.ErrorIs(t, err, domainerrors.ErrInvalidRefreshToken, "attempt %d", i) {
				losers++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, losers)
	assert.Len(t, f.store.sessions, 2)
}

func TestSessionService_RotateSession_RollsBackWhenSuccessorFails(t *testing.T) {
	f := newTestFixture(t)
	user := seedUser(f)
	stored, _ := openSession(t, f, user.ID, deviceA)
	f.store.failOn("sessions.Create", errStoreDown)

	_, err := f.sessions.RotateSession(context.Background(), &usecase.RotateSessionInput{
		Stored:          stored,
		NewRefreshToken: "next-token",
		ExpiresAt:       time.Now().Add(time.Hour),
	})

	require.ErrorIs(t, err, errStoreDown)
	assert.False(t, f.store.sessions[stored.ID].Revoked)
}

func TestSessionService_ListSessions_NewestFirst(t *testing.T) {
	f := newTestFixture(t)
	user := seedUser(f)
	other := seedUser(f)
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := range 3 {
		f.sessions.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		session, _ := openSession(t, f, user.ID, deviceA)
		ids = append(ids, session.ID)
	}
	openSession(t, f, other.ID, deviceB)

	sessions, err := f.sessions.ListSessions(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, ids[2], sessions[0].ID)
	assert.Equal(t, ids[1], sessions[1].ID)
	assert.Equal(t, ids[0], sessions[2].ID)
}

func TestSessionService_RevokeSession_OnlyOwner(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	owner := seedUser(f)
	intruder := seedUser(f)
	session, _ := openSession(t, f, owner.ID, deviceA)

	revoked, err := f.sessions.RevokeSession(ctx, intruder.ID, session.ID)
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.False(t, f.store.sessions[session.ID].Revoked)

	revoked, err = f.sessions.RevokeSession(ctx, owner.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = f.sessions.RevokeSession(ctx, owner.ID, session.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, f.store.sessions[session.ID].Revoked)
}

func TestSessionService_RevokeAllSessions_Idempotent(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()
	user := seedUser(f)
	openSession(t, f, user.ID, deviceA)
	openSession(t, f, user.ID, deviceB)

	count, err := f.sessions.RevokeAllSessions(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = f.sessions.RevokeAllSessions(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	sessions, err := f.sessions.ListSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	for _, session := range sessions {
		assert.True(t, session.Revoked)
	}
}

func TestSessionService_CleanupExpiredSessions(t *testing.T) {
	f := newTestFixture(t)
	user := seedUser(f)
	_, err := f.sessions.CreateSession(context.Background(), &usecase.CreateSessionInput{
		UserID:       user.ID,
		RefreshToken: "old",
		ExpiresAt:    time.Now().Add(-time.Hour),
		Context:      deviceA,
	})
	require.NoError(t, err)
	live, _ := openSession(t, f, user.ID, deviceA)

	deleted, err := f.sessions.CleanupExpiredSessions(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Contains(t, f.store.sessions, live.ID)
}
