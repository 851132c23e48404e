package database

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record does not exist. Callers decide
// whether absence is an error, an auth failure or simply "disabled".
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
// Under concurrent writes the unique index is the authority, not any
// prior existence check.
var ErrDuplicate = errors.New("record already exists")

// Database defines the methods for database operations.
type Database interface {
	// Close closes the database connection.
	Close() error

	// Transaction runs fn inside a transaction. The context passed to fn
	// carries the transaction; nested calls through the interface reuse it.
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error

	// CreateTenant creates a new tenant.
	CreateTenant(ctx context.Context, tenant *Tenant) error

	// GetTenantByID gets a tenant by its id.
	GetTenantByID(ctx context.Context, id uint) (*Tenant, error)

	// ListTenants lists all tenants.
	ListTenants(ctx context.Context) ([]*Tenant, error)

	// CreateUser creates a new user.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByID gets a user by its id.
	GetUserByID(ctx context.Context, id uint) (*User, error)

	// GetUserByEmail gets a user by email. Email is unique across tenants.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// UpdateUser updates an existing user.
	UpdateUser(ctx context.Context, user *User) error

	// ListUsersByTenant lists all users belonging to a tenant.
	ListUsersByTenant(ctx context.Context, tenantID uint) ([]*User, error)

	// CreateRole creates a new role.
	CreateRole(ctx context.Context, role *Role) error

	// GetRoleByID gets a role by its id.
	GetRoleByID(ctx context.Context, id uint) (*Role, error)

	// UpdateRole updates an existing role.
	UpdateRole(ctx context.Context, role *Role) error

	// DeleteRole deletes a role by id.
	DeleteRole(ctx context.Context, id uint) error

	// ListRolesByTenant lists a tenant's roles plus system-defined roles.
	ListRolesByTenant(ctx context.Context, tenantID uint) ([]*Role, error)

	// CreateModule registers a module in the catalogue.
	CreateModule(ctx context.Context, module *Module) error

	// GetModuleByName gets a module by its unique name.
	GetModuleByName(ctx context.Context, name string) (*Module, error)

	// ListModules lists the module catalogue.
	ListModules(ctx context.Context) ([]*Module, error)

	// GetTenantModule gets the entitlement row for a tenant and module.
	GetTenantModule(ctx context.Context, tenantID, moduleID uint) (*TenantModule, error)

	// UpsertTenantModule creates or updates a tenant's entitlement row.
	UpsertTenantModule(ctx context.Context, tm *TenantModule) error

	// ListTenantModules lists a tenant's entitlement rows.
	ListTenantModules(ctx context.Context, tenantID uint) ([]*TenantModule, error)

	// CreateAuthToken stores a refresh-token record.
	CreateAuthToken(ctx context.Context, token *AuthToken) error

	// GetAuthTokenByHash gets a refresh-token record by its secret hash,
	// revoked or not.
	GetAuthTokenByHash(ctx context.Context, hash string) (*AuthToken, error)

	// MarkAuthTokenRevoked revokes a single token record conditionally:
	// the update only applies if the record is not yet revoked, and the
	// return value reports whether this caller performed it. Concurrent
	// rotations of the same token therefore have exactly one winner.
	MarkAuthTokenRevoked(ctx context.Context, id string) (bool, error)

	// RevokeAuthTokensByUser revokes every token record of a user.
	RevokeAuthTokensByUser(ctx context.Context, userID uint) error

	// DeleteAuthTokenByHash deletes a token record by hash. Deleting a
	// missing record is not an error.
	DeleteAuthTokenByHash(ctx context.Context, hash string) error

	// DeleteExpiredAuthTokens removes expired records and returns the count.
	DeleteExpiredAuthTokens(ctx context.Context) (int64, error)
}
