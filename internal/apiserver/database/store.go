package database

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Store implements the Database interface on top of gorm. The same
// implementation serves every supported driver; only the dialector differs.
type Store struct {
	db *gorm.DB
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Transaction runs fn inside a gorm transaction carried in the context.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ContextWithTransaction(ctx, tx))
	})
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (s *Store) CreateTenant(ctx context.Context, tenant *Tenant) error {
	return getDBFromContext(ctx, s.db).Create(tenant).Error
}

func (s *Store) GetTenantByID(ctx context.Context, id uint) (*Tenant, error) {
	var tenant Tenant
	if err := getDBFromContext(ctx, s.db).First(&tenant, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &tenant, nil
}

func (s *Store) ListTenants(ctx context.Context) ([]*Tenant, error) {
	var tenants []*Tenant
	err := getDBFromContext(ctx, s.db).Order("id asc").Find(&tenants).Error
	return tenants, err
}

func (s *Store) CreateUser(ctx context.Context, user *User) error {
	if err := getDBFromContext(ctx, s.db).Create(user).Error; err != nil {
		return translateErr(err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := getDBFromContext(ctx, s.db).First(&user, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := getDBFromContext(ctx, s.db).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *User) error {
	return getDBFromContext(ctx, s.db).Save(user).Error
}

func (s *Store) ListUsersByTenant(ctx context.Context, tenantID uint) ([]*User, error) {
	var users []*User
	err := getDBFromContext(ctx, s.db).
		Where("tenant_id = ?", tenantID).
		Order("id asc").
		Find(&users).Error
	return users, err
}

func (s *Store) CreateRole(ctx context.Context, role *Role) error {
	return getDBFromContext(ctx, s.db).Create(role).Error
}

func (s *Store) GetRoleByID(ctx context.Context, id uint) (*Role, error) {
	var role Role
	if err := getDBFromContext(ctx, s.db).First(&role, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &role, nil
}

func (s *Store) UpdateRole(ctx context.Context, role *Role) error {
	return getDBFromContext(ctx, s.db).Save(role).Error
}

func (s *Store) DeleteRole(ctx context.Context, id uint) error {
	return getDBFromContext(ctx, s.db).Delete(&Role{}, id).Error
}

func (s *Store) ListRolesByTenant(ctx context.Context, tenantID uint) ([]*Role, error) {
	var roles []*Role
	err := getDBFromContext(ctx, s.db).
		Where("tenant_id = ? OR tenant_id IS NULL", tenantID).
		Order("id asc").
		Find(&roles).Error
	return roles, err
}

func (s *Store) CreateModule(ctx context.Context, module *Module) error {
	return getDBFromContext(ctx, s.db).Create(module).Error
}

func (s *Store) GetModuleByName(ctx context.Context, name string) (*Module, error) {
	var module Module
	if err := getDBFromContext(ctx, s.db).Where("name = ?", name).First(&module).Error; err != nil {
		return nil, translateErr(err)
	}
	return &module, nil
}

func (s *Store) ListModules(ctx context.Context) ([]*Module, error) {
	var modules []*Module
	err := getDBFromContext(ctx, s.db).Order("id asc").Find(&modules).Error
	return modules, err
}

func (s *Store) GetTenantModule(ctx context.Context, tenantID, moduleID uint) (*TenantModule, error) {
	var tm TenantModule
	err := getDBFromContext(ctx, s.db).
		Where("tenant_id = ? AND module_id = ?", tenantID, moduleID).
		First(&tm).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &tm, nil
}

func (s *Store) UpsertTenantModule(ctx context.Context, tm *TenantModule) error {
	db := getDBFromContext(ctx, s.db)
	var existing TenantModule
	err := db.Where("tenant_id = ? AND module_id = ?", tm.TenantID, tm.ModuleID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(tm).Error
	}
	if err != nil {
		return err
	}
	existing.IsEnabled = tm.IsEnabled
	existing.EnabledAt = tm.EnabledAt
	*tm = existing
	return db.Save(&existing).Error
}

func (s *Store) ListTenantModules(ctx context.Context, tenantID uint) ([]*TenantModule, error) {
	var tms []*TenantModule
	err := getDBFromContext(ctx, s.db).
		Where("tenant_id = ?", tenantID).
		Order("module_id asc").
		Find(&tms).Error
	return tms, err
}

func (s *Store) CreateAuthToken(ctx context.Context, token *AuthToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	return getDBFromContext(ctx, s.db).Create(token).Error
}

func (s *Store) GetAuthTokenByHash(ctx context.Context, hash string) (*AuthToken, error) {
	var token AuthToken
	err := getDBFromContext(ctx, s.db).Where("token_hash = ?", hash).First(&token).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &token, nil
}

// MarkAuthTokenRevoked is the single-winner primitive for rotation: the
// conditional update applies only to a not-yet-revoked row, so of any number
// of concurrent refresh calls exactly one observes rowsAffected == 1.
func (s *Store) MarkAuthTokenRevoked(ctx context.Context, id string) (bool, error) {
	res := getDBFromContext(ctx, s.db).
		Model(&AuthToken{}).
		Where("id = ? AND revoked = ?", id, false).
		Update("revoked", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) RevokeAuthTokensByUser(ctx context.Context, userID uint) error {
	return getDBFromContext(ctx, s.db).
		Model(&AuthToken{}).
		Where("user_id = ?", userID).
		Update("revoked", true).Error
}

func (s *Store) DeleteAuthTokenByHash(ctx context.Context, hash string) error {
	return getDBFromContext(ctx, s.db).
		Where("token_hash = ?", hash).
		Delete(&AuthToken{}).Error
}

func (s *Store) DeleteExpiredAuthTokens(ctx context.Context) (int64, error) {
	res := getDBFromContext(ctx, s.db).
		Where("expires_at <= ?", time.Now()).
		Delete(&AuthToken{})
	return res.RowsAffected, res.Error
}
