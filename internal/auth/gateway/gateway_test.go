package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/glintlab/aegis/internal/apiserver/database"
	"github.com/glintlab/aegis/internal/auth"
	"github.com/glintlab/aegis/internal/auth/jwt"
	"github.com/glintlab/aegis/internal/auth/token"
	"github.com/glintlab/aegis/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateway(t *testing.T) (*Gateway, *token.Service, database.Database) {
	t.Helper()
	db, err := database.NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	jwtSvc, err := jwt.NewService(jwt.Config{
		SecretKey: "this-is-a-very-long-secret-key-for-testing",
		Duration:  time.Hour,
	})
	require.NoError(t, err)
	tokens := token.NewService(db, jwtSvc, 24*time.Hour, zap.NewNop())
	return New(db, tokens, zap.NewNop()), tokens, db
}

func TestRegisterCreatesTenantAndAdmin(t *testing.T) {
	g, tokens, _ := newTestGateway(t)
	ctx := context.Background()

	user, tenant, pair, err := g.Register(ctx, RegisterInput{
		TenantName: "acme", FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@acme.test", Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, user.TenantID)
	assert.Equal(t, auth.UserTypeAgencyAdmin, user.UserType)
	assert.True(t, user.IsAdmin)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	claims, err := tokens.ValidateAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	g, tokens, _ := newTestGateway(t)
	ctx := context.Background()

	_, _, first, err := g.Register(ctx, RegisterInput{
		TenantName: "one", Email: "a@x.com", Password: "pw-one",
	})
	require.NoError(t, err)

	_, _, _, err = g.Register(ctx, RegisterInput{
		TenantName: "two", Email: "a@x.com", Password: "pw-two",
	})
	assert.ErrorIs(t, err, auth.ErrEmailExists)

	// The first registration's tokens are unaffected by the conflict.
	_, err = tokens.ValidateAccess(first.AccessToken)
	assert.NoError(t, err)
	_, err = tokens.Refresh(ctx, first.RefreshToken)
	assert.NoError(t, err)
}

// blindEmailCheckDB misses every email lookup, standing in for the window
// where a concurrent registration commits between the pre-check and the
// insert. The unique index must still yield the conflict error.
type blindEmailCheckDB struct {
	database.Database
}

func (d blindEmailCheckDB) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	return nil, database.ErrNotFound
}

func TestRegisterConcurrentDuplicateEmail(t *testing.T) {
	g, tokens, db := newTestGateway(t)
	ctx := context.Background()

	_, _, _, err := g.Register(ctx, RegisterInput{
		TenantName: "one", Email: "a@x.com", Password: "pw-one",
	})
	require.NoError(t, err)

	racer := New(blindEmailCheckDB{Database: db}, tokens, zap.NewNop())
	_, _, _, err = racer.Register(ctx, RegisterInput{
		TenantName: "two", Email: "a@x.com", Password: "pw-two",
	})
	assert.ErrorIs(t, err, auth.ErrEmailExists)
}

func TestLoginSuccessAndFailure(t *testing.T) {
	g, _, _ := newTestGateway(t)
	ctx := context.Background()

	_, _, _, err := g.Register(ctx, RegisterInput{
		TenantName: "acme", Email: "ada@acme.test", Password: "correct horse",
	})
	require.NoError(t, err)

	user, pair, err := g.Login(ctx, "ada@acme.test", "correct horse")
	require.NoError(t, err)
	assert.NotNil(t, pair)
	assert.Equal(t, "ada@acme.test", user.Email)

	// Wrong password and unknown email are the same failure.
	_, _, err = g.Login(ctx, "ada@acme.test", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, _, err = g.Login(ctx, "nobody@acme.test", "correct horse")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	g, _, db := newTestGateway(t)
	ctx := context.Background()

	user, _, _, err := g.Register(ctx, RegisterInput{
		TenantName: "acme", Email: "ada@acme.test", Password: "correct horse",
	})
	require.NoError(t, err)

	user.IsActive = false
	require.NoError(t, db.UpdateUser(ctx, user))

	_, _, err = g.Login(ctx, "ada@acme.test", "correct horse")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
