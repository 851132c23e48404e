package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for authentication and access-control operations.
// Handlers translate these into HTTP statuses; anything else is treated
// as a transient storage failure and never as a grant.
var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// inactive accounts. The causes are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailExists is returned when registering with an email that is
	// already taken, in any tenant.
	ErrEmailExists = errors.New("email already registered")

	// ErrTokenExpired is returned for access or refresh tokens past expiry.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned for malformed, unknown, tampered or
	// superseded tokens.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrPermissionDenied is returned when an authenticated user lacks the
	// required permission for an action.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrModuleDisabled is returned when a tenant has no entitlement for
	// the requested feature module.
	ErrModuleDisabled = errors.New("module is not enabled for tenant")

	// ErrTenantMismatch indicates a role assigned across tenant boundaries.
	// This is a data-integrity fault, not a client error.
	ErrTenantMismatch = errors.New("role tenant does not match user tenant")

	// ErrUserInactive is returned internally for disabled accounts; the
	// login path folds it into ErrInvalidCredentials.
	ErrUserInactive = errors.New("user account is inactive")
)

// ErrTokenReuse marks a superseded refresh token being presented again.
// It matches ErrTokenInvalid under errors.Is, so callers observe a plain
// invalid-token rejection while the incident stays distinguishable in logs.
var ErrTokenReuse = fmt.Errorf("%w: refresh token reuse detected", ErrTokenInvalid)
