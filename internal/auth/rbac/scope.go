package rbac

import (
	"strconv"

	"github.com/glintlab/aegis/internal/auth"
)

// ScopeAll marks a cross-tenant scope. Only the saas_admin type gets it.
const ScopeAll = "*"

// Scope returns the tenant scope every data operation of a request must be
// confined to. The core does not filter data itself; downstream layers are
// required to parameterise their queries by this value.
func Scope(userType auth.UserType, tenantID uint) string {
	if userType.CrossTenant() {
		return ScopeAll
	}
	return strconv.FormatUint(uint64(tenantID), 10)
}
