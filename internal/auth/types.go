package auth

// UserType represents the account class of a user. It is a closed set:
// exactly one of the four values below.
type UserType string

const (
	// UserTypeSaasAdmin is the platform operator. The only type permitted
	// to act across tenant boundaries.
	UserTypeSaasAdmin UserType = "saas_admin"

	// UserTypeAgencyAdmin administers a single tenant. Created for the
	// first user of every tenant at registration.
	UserTypeAgencyAdmin UserType = "agency_admin"

	// UserTypeTeamMember is a regular tenant user whose permissions come
	// from the assigned role.
	UserTypeTeamMember UserType = "team_member"

	// UserTypeCustomer is an external account with portal-level access.
	UserTypeCustomer UserType = "customer"
)

// ValidUserTypes is the set of accepted user types.
var ValidUserTypes = []UserType{
	UserTypeSaasAdmin,
	UserTypeAgencyAdmin,
	UserTypeTeamMember,
	UserTypeCustomer,
}

// Valid returns true if the user type is a member of the closed set.
func (t UserType) Valid() bool {
	for _, v := range ValidUserTypes {
		if t == v {
			return true
		}
	}
	return false
}

// CrossTenant returns true if the user type may act outside its own tenant.
func (t UserType) CrossTenant() bool {
	return t == UserTypeSaasAdmin
}

// PermissionAll is the universal wildcard permission. A permission set
// containing it allows every action.
const PermissionAll = "*"

// Permission strings gating the administrative surface of the core itself.
// Business modules define their own action strings; evaluation is always
// an exact, case-sensitive match.
const (
	PermissionUsersManage   = "users.manage"
	PermissionRolesManage   = "roles.manage"
	PermissionModulesManage = "modules.manage"
)
