package rbac

import (
	"context"
	"testing"

	"github.com/glintlab/aegis/internal/apiserver/database"
	"github.com/glintlab/aegis/internal/auth"
	"github.com/glintlab/aegis/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) (*Resolver, database.Database) {
	t.Helper()
	db, err := database.NewDatabase(&config.DatabaseConfig{Type: "sqlite", DBName: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewResolver(db), db
}

func TestAdminOverrideGrantsEverything(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	for _, user := range []*database.User{
		{TenantID: 1, UserType: auth.UserTypeTeamMember, IsAdmin: true},
		{TenantID: 1, UserType: auth.UserTypeSaasAdmin},
	} {
		perms, err := r.EffectivePermissions(ctx, user)
		require.NoError(t, err)
		assert.True(t, perms.Contains("deals.delete"))
		assert.True(t, perms.Contains("anything.at.all"))
	}
}

func TestNoRoleMeansNoPermissions(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	user := &database.User{TenantID: 1, UserType: auth.UserTypeTeamMember}
	perms, err := r.EffectivePermissions(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, perms)

	ok, err := r.HasPermission(ctx, user, "contacts.read")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRolePermissionsExactMatchOnly(t *testing.T) {
	r, db := newTestResolver(t)
	ctx := context.Background()

	tenant := &database.Tenant{Name: "acme"}
	require.NoError(t, db.CreateTenant(ctx, tenant))
	role := &database.Role{TenantID: &tenant.ID, Name: "sales"}
	role.SetPermissionList([]string{"deals.read", "deals.write"})
	require.NoError(t, db.CreateRole(ctx, role))

	user := &database.User{TenantID: tenant.ID, RoleID: &role.ID, UserType: auth.UserTypeTeamMember}

	cases := []struct {
		action string
		want   bool
	}{
		{"deals.read", true},
		{"deals.write", true},
		{"deals.delete", false},
		{"deals", false},        // no prefix matching
		{"Deals.read", false},   // case-sensitive
		{"deals.read ", false},  // verbatim
	}
	for _, tc := range cases {
		ok, err := r.HasPermission(ctx, user, tc.action)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ok, tc.action)
	}
}

func TestDanglingRoleGrantsNothing(t *testing.T) {
	r, _ := newTestResolver(t)
	ctx := context.Background()

	missing := uint(999)
	user := &database.User{TenantID: 1, RoleID: &missing, UserType: auth.UserTypeTeamMember}
	perms, err := r.EffectivePermissions(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestCrossTenantRoleIsIntegrityFault(t *testing.T) {
	r, db := newTestResolver(t)
	ctx := context.Background()

	mine := &database.Tenant{Name: "mine"}
	theirs := &database.Tenant{Name: "theirs"}
	require.NoError(t, db.CreateTenant(ctx, mine))
	require.NoError(t, db.CreateTenant(ctx, theirs))

	role := &database.Role{TenantID: &theirs.ID, Name: "ops"}
	role.SetPermissionList([]string{"everything"})
	require.NoError(t, db.CreateRole(ctx, role))

	user := &database.User{TenantID: mine.ID, RoleID: &role.ID, UserType: auth.UserTypeTeamMember}
	_, err := r.EffectivePermissions(ctx, user)
	assert.ErrorIs(t, err, auth.ErrTenantMismatch)
}

func TestSystemRoleAppliesToAnyTenant(t *testing.T) {
	r, db := newTestResolver(t)
	ctx := context.Background()

	role := &database.Role{Name: "viewer"} // nil TenantID: system-defined
	role.SetPermissionList([]string{"contacts.read"})
	require.NoError(t, db.CreateRole(ctx, role))

	user := &database.User{TenantID: 42, RoleID: &role.ID, UserType: auth.UserTypeCustomer}
	ok, err := r.HasPermission(ctx, user, "contacts.read")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestScope(t *testing.T) {
	assert.Equal(t, ScopeAll, Scope(auth.UserTypeSaasAdmin, 7))
	assert.Equal(t, "7", Scope(auth.UserTypeAgencyAdmin, 7))
	assert.Equal(t, "7", Scope(auth.UserTypeTeamMember, 7))
	assert.Equal(t, "7", Scope(auth.UserTypeCustomer, 7))
}
