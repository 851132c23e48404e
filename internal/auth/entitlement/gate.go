package entitlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/glintlab/aegis/internal/apiserver/database"
)

// ErrUnknownModule is returned when the module name is not in the catalogue.
var ErrUnknownModule = errors.New("unknown module")

// Gate decides whether a tenant may use a feature module. Core modules are
// always enabled; non-core modules are opt-in per tenant.
type Gate struct {
	db database.Database
}

// NewGate creates a new module entitlement gate
func NewGate(db database.Database) *Gate {
	return &Gate{db: db}
}

// IsEnabled reports whether a tenant is entitled to a module. Absence of an
// entitlement row for a non-core module means disabled, not an error.
func (g *Gate) IsEnabled(ctx context.Context, tenantID uint, moduleName string) (bool, error) {
	module, err := g.db.GetModuleByName(ctx, moduleName)
	if errors.Is(err, database.ErrNotFound) {
		return false, fmt.Errorf("%w: %s", ErrUnknownModule, moduleName)
	}
	if err != nil {
		return false, fmt.Errorf("loading module: %w", err)
	}

	if module.IsCore {
		return true, nil
	}

	tm, err := g.db.GetTenantModule(ctx, tenantID, module.ID)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("loading tenant entitlement: %w", err)
	}
	return tm.IsEnabled, nil
}

// EnabledSet resolves the entitlement state of the whole catalogue for a
// tenant in one pass, keyed by module id.
func (g *Gate) EnabledSet(ctx context.Context, tenantID uint) (map[uint]bool, error) {
	modules, err := g.db.ListModules(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	rows, err := g.db.ListTenantModules(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing tenant entitlements: %w", err)
	}

	optIn := make(map[uint]bool, len(rows))
	for _, tm := range rows {
		optIn[tm.ModuleID] = tm.IsEnabled
	}
	enabled := make(map[uint]bool, len(modules))
	for _, m := range modules {
		enabled[m.ID] = m.IsCore || optIn[m.ID]
	}
	return enabled, nil
}
