package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserTypeValid(t *testing.T) {
	for _, ut := range ValidUserTypes {
		assert.True(t, ut.Valid(), string(ut))
	}
	assert.False(t, UserType("root").Valid())
	assert.False(t, UserType("").Valid())
}

func TestCrossTenant(t *testing.T) {
	assert.True(t, UserTypeSaasAdmin.CrossTenant())
	assert.False(t, UserTypeAgencyAdmin.CrossTenant())
	assert.False(t, UserTypeTeamMember.CrossTenant())
	assert.False(t, UserTypeCustomer.CrossTenant())
}

func TestTokenReuseMatchesTokenInvalid(t *testing.T) {
	assert.True(t, errors.Is(ErrTokenReuse, ErrTokenInvalid))
	assert.False(t, errors.Is(ErrTokenReuse, ErrTokenExpired))
}
