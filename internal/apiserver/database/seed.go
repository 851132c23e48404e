package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glintlab/aegis/internal/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// defaultModules is the catalogue of feature modules known to the platform.
// Core modules are implicitly enabled for every tenant.
var defaultModules = []Module{
	{Name: "contacts", DisplayName: "Contacts", IsCore: true},
	{Name: "tasks", DisplayName: "Tasks", IsCore: true},
	{Name: "deals", DisplayName: "Deals"},
	{Name: "quotations", DisplayName: "Quotations"},
	{Name: "invoices", DisplayName: "Invoices"},
	{Name: "ai_assist", DisplayName: "AI Assist"},
}

// Seed makes sure the module catalogue and the bootstrap super admin exist.
// It is idempotent and safe to run on every start.
func Seed(ctx context.Context, db Database, logger *zap.Logger, adminEmail, adminPassword string) error {
	for _, m := range defaultModules {
		if _, err := db.GetModuleByName(ctx, m.Name); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("checking module %q: %w", m.Name, err)
		}
		module := m
		if err := db.CreateModule(ctx, &module); err != nil {
			return fmt.Errorf("creating module %q: %w", m.Name, err)
		}
		logger.Info("registered module",
			zap.String("name", module.Name),
			zap.Bool("isCore", module.IsCore))
	}

	// An account with an empty password must never exist, so both values are
	// required before the super admin is created.
	if adminEmail == "" || adminPassword == "" {
		if adminEmail != "" {
			logger.Warn("super admin seeding skipped, no password configured",
				zap.String("email", adminEmail))
		}
		return nil
	}

	if _, err := db.GetUserByEmail(ctx, adminEmail); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("checking super admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing super admin password: %w", err)
	}

	return db.Transaction(ctx, func(ctx context.Context) error {
		tenant := &Tenant{Name: "platform", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if err := db.CreateTenant(ctx, tenant); err != nil {
			return fmt.Errorf("creating platform tenant: %w", err)
		}
		user := &User{
			TenantID:     tenant.ID,
			Email:        adminEmail,
			FirstName:    "Super",
			LastName:     "Admin",
			PasswordHash: string(hash),
			UserType:     auth.UserTypeSaasAdmin,
			IsAdmin:      true,
			IsActive:     true,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := db.CreateUser(ctx, user); err != nil {
			return fmt.Errorf("creating super admin: %w", err)
		}
		logger.Info("created super admin", zap.String("email", adminEmail))
		return nil
	})
}
