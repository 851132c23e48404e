package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/glintlab/aegis/internal/apiserver/database"
	"github.com/glintlab/aegis/internal/auth"
)

// PermissionSet is the resolved set of permission strings of a user.
type PermissionSet map[string]struct{}

// Contains reports whether the set allows an action. Matching is exact and
// case-sensitive; the universal wildcard allows everything.
func (ps PermissionSet) Contains(action string) bool {
	if _, ok := ps[auth.PermissionAll]; ok {
		return true
	}
	_, ok := ps[action]
	return ok
}

// Resolver maps a user to its effective permission set.
type Resolver struct {
	db database.Database
}

// NewResolver creates a new role resolver
func NewResolver(db database.Database) *Resolver {
	return &Resolver{db: db}
}

// EffectivePermissions resolves a user's permission set. One precedence rule:
// the admin override flag or the saas_admin type yields the universal
// wildcard unconditionally; otherwise the assigned role's set applies, empty
// when no role is assigned.
func (r *Resolver) EffectivePermissions(ctx context.Context, user *database.User) (PermissionSet, error) {
	if user.IsAdmin || user.UserType == auth.UserTypeSaasAdmin {
		return PermissionSet{auth.PermissionAll: {}}, nil
	}
	if user.RoleID == nil {
		return PermissionSet{}, nil
	}

	role, err := r.db.GetRoleByID(ctx, *user.RoleID)
	if errors.Is(err, database.ErrNotFound) {
		// Dangling role reference grants nothing.
		return PermissionSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading role: %w", err)
	}

	// A tenant-scoped role must belong to the user's tenant. A violation is
	// a data-integrity fault, not a client error.
	if role.TenantID != nil && *role.TenantID != user.TenantID {
		return nil, auth.ErrTenantMismatch
	}

	perms := make(PermissionSet)
	for _, p := range role.PermissionList() {
		perms[p] = struct{}{}
	}
	return perms, nil
}

// HasPermission reports whether the user may perform an action.
func (r *Resolver) HasPermission(ctx context.Context, user *database.User, action string) (bool, error) {
	perms, err := r.EffectivePermissions(ctx, user)
	if err != nil {
		return false, err
	}
	return perms.Contains(action), nil
}
