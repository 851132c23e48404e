package database

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/glintlab/aegis/internal/auth"
)

// Tenant represents an isolated customer organisation. It owns all of its
// users, roles and module entitlements.
type Tenant struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	PackageID *uint     `json:"packageId,omitempty"` // subscription tier, optional
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Role is a named, tenant-scoped set of permission strings. A nil TenantID
// marks a system-defined role visible to every tenant.
type Role struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID    *uint     `json:"tenantId,omitempty" gorm:"index"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Permissions string    `json:"-" gorm:"type:text"` // JSON array, deduplicated
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PermissionList decodes the stored permission set. Order is not significant;
// a corrupt column reads as an empty set rather than an error.
func (r *Role) PermissionList() []string {
	if r.Permissions == "" {
		return nil
	}
	var perms []string
	if err := json.Unmarshal([]byte(r.Permissions), &perms); err != nil {
		return nil
	}
	return perms
}

// SetPermissionList stores a permission set, collapsing duplicates.
func (r *Role) SetPermissionList(perms []string) {
	seen := make(map[string]bool, len(perms))
	unique := make([]string, 0, len(perms))
	for _, p := range perms {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		unique = append(unique, p)
	}
	sort.Strings(unique)
	data, _ := json.Marshal(unique)
	r.Permissions = string(data)
}

// User represents an account. Email is unique across all tenants; login is
// tenant-agnostic by email. TenantID is immutable after creation.
type User struct {
	ID           uint          `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID     uint          `json:"tenantId" gorm:"index;not null"`
	Email        string        `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName    string        `json:"firstName" gorm:"type:varchar(100)"`
	LastName     string        `json:"lastName" gorm:"type:varchar(100)"`
	PasswordHash string        `json:"-" gorm:"not null"` // never exposed in JSON
	RoleID       *uint         `json:"roleId,omitempty"`
	UserType     auth.UserType `json:"userType" gorm:"type:varchar(20);not null"`
	IsAdmin      bool          `json:"isAdmin" gorm:"not null;default:false"`
	IsActive     bool          `json:"isActive" gorm:"not null;default:true"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// AuthToken is a stored refresh-token record. Only the SHA-256 hash of the
// secret is persisted; the raw value is returned to the client exactly once.
// Superseded records are marked revoked, never reused, so that presenting a
// rotated-out token is detectable as a reuse incident.
type AuthToken struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID    uint      `json:"userId" gorm:"index;not null"`
	FamilyID  string    `json:"familyId" gorm:"type:varchar(64);index"`
	TokenHash string    `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	ExpiresAt time.Time `json:"expiresAt"`
	Revoked   bool      `json:"revoked" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt"`
}

// Module is a feature area of the application. Core modules are always
// enabled for every tenant and cannot be disabled.
type Module struct {
	ID          uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"type:varchar(50);uniqueIndex;not null"`
	DisplayName string `json:"displayName" gorm:"type:varchar(100)"`
	IsCore      bool   `json:"isCore" gorm:"not null;default:false"`
}

// TenantModule records a tenant's entitlement to a non-core module.
// Absence of a row means disabled; entitlement is opt-in.
type TenantModule struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	TenantID  uint      `json:"tenantId" gorm:"uniqueIndex:idx_tenant_module;not null"`
	ModuleID  uint      `json:"moduleId" gorm:"uniqueIndex:idx_tenant_module;not null"`
	IsEnabled bool      `json:"isEnabled" gorm:"not null;default:false"`
	EnabledAt time.Time `json:"enabledAt"`
}
