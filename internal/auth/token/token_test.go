package token

import (
	"context"
	"testing"
	"time"

	"github.com/glintlab/aegis/internal/apiserver/database"
	"github.com/glintlab/aegis/internal/auth"
	"github.com/glintlab/aegis/internal/auth/jwt"
	"github.com/glintlab/aegis/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "this-is-a-very-long-secret-key-for-testing"

func newTestService(t *testing.T, refreshTTL time.Duration) (*Service, database.Database, *database.User) {
	t.Helper()
	db, err := database.NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	tenant := &database.Tenant{Name: "acme"}
	require.NoError(t, db.CreateTenant(ctx, tenant))
	user := &database.User{
		TenantID:     tenant.ID,
		Email:        "user@acme.test",
		PasswordHash: "x",
		UserType:     auth.UserTypeAgencyAdmin,
		IsAdmin:      true,
		IsActive:     true,
	}
	require.NoError(t, db.CreateUser(ctx, user))

	jwtSvc, err := jwt.NewService(jwt.Config{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)
	return NewService(db, jwtSvc, refreshTTL, zap.NewNop()), db, user
}

func TestIssueStoresHashOnly(t *testing.T) {
	svc, db, user := newTestService(t, time.Hour)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 3600, pair.ExpiresIn)

	// The record is retrievable by hash only; the raw value is not stored.
	rec, err := db.GetAuthTokenByHash(ctx, HashToken(pair.RefreshToken))
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rec.TokenHash)
	assert.False(t, rec.Revoked)

	_, err = db.GetAuthTokenByHash(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestValidateAccess(t *testing.T) {
	svc, _, user := newTestService(t, time.Hour)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	claims, err := svc.ValidateAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.TenantID, claims.TenantID)
	assert.True(t, claims.IsAdmin)

	_, err = svc.ValidateAccess("garbage")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestRefreshRotatesAndInvalidatesOld(t *testing.T) {
	svc, _, user := newTestService(t, time.Hour)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	claims, err := svc.ValidateAccess(next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRefreshReuseRevokesAllSessions(t *testing.T) {
	svc, _, user := newTestService(t, time.Hour)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	// A second, independent session for the same user.
	other, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	// Replaying the rotated-out token is a reuse incident.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	// Every session of the user is now dead, including the fresh rotation
	// and the unrelated second session.
	_, err = svc.Refresh(ctx, next.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
	_, err = svc.Refresh(ctx, other.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _, _ := newTestService(t, time.Hour)
	_, err := svc.Refresh(context.Background(), "never-issued")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestRefreshExpiredToken(t *testing.T) {
	svc, _, user := newTestService(t, -time.Minute)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestRefreshInactiveUser(t *testing.T) {
	svc, db, user := newTestService(t, time.Hour)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, db.UpdateUser(ctx, user))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestRevokeIsIdempotent(t *testing.T) {
	svc, _, user := newTestService(t, time.Hour)
	ctx := context.Background()

	pair, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))

	// A revoked-by-logout token is simply unknown afterwards, not a reuse
	// incident.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestPurge(t *testing.T) {
	svc, _, user := newTestService(t, -time.Minute)
	ctx := context.Background()

	_, err := svc.Issue(ctx, user)
	require.NoError(t, err)

	n, err := svc.Purge(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
