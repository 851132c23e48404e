package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/glintlab/aegis/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "this-is-a-very-long-secret-key-for-testing"

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(Config{SecretKey: "", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrEmptySecretKey)

	_, err = NewService(Config{SecretKey: "short", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrWeakSecretKey)

	_, err = NewService(Config{SecretKey: testSecret, Duration: 0})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestGenerateAndValidate(t *testing.T) {
	s, err := NewService(Config{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)

	roleID := uint(3)
	tok, err := s.GenerateToken(42, 7, auth.UserTypeTeamMember, &roleID, false)
	require.NoError(t, err)

	claims, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, uint(7), claims.TenantID)
	assert.Equal(t, auth.UserTypeTeamMember, claims.UserType)
	if assert.NotNil(t, claims.RoleID) {
		assert.Equal(t, uint(3), *claims.RoleID)
	}
	assert.False(t, claims.IsAdmin)
}

func TestValidateExpired(t *testing.T) {
	s := &Service{config: Config{SecretKey: testSecret, Duration: -time.Minute}}
	tok, err := s.GenerateToken(1, 1, auth.UserTypeCustomer, nil, false)
	require.NoError(t, err)

	claims, err := s.ValidateToken(tok)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTampered(t *testing.T) {
	s, err := NewService(Config{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)

	tok, err := s.GenerateToken(1, 1, auth.UserTypeSaasAdmin, nil, true)
	require.NoError(t, err)

	// Flip the signature.
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	parts[2] = "AAAA" + parts[2][4:]
	claims, err := s.ValidateToken(strings.Join(parts, "."))
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err = s.ValidateToken("not-a-token")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	a, _ := NewService(Config{SecretKey: testSecret, Duration: time.Hour})
	b, _ := NewService(Config{SecretKey: "another-equally-long-secret-key-here!", Duration: time.Hour})

	tok, err := a.GenerateToken(1, 1, auth.UserTypeAgencyAdmin, nil, true)
	require.NoError(t, err)

	claims, err := b.ValidateToken(tok)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
