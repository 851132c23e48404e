package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glintlab/aegis/internal/apiserver/database"
	"github.com/glintlab/aegis/internal/apiserver/middleware"
	"github.com/glintlab/aegis/internal/auth/entitlement"
	"github.com/glintlab/aegis/internal/common/dto"
	"go.uber.org/zap"
)

// Module handles the module catalogue, per-tenant entitlements and the
// entitlement check feature services call before serving tenant traffic.
type Module struct {
	db     database.Database
	gate   *entitlement.Gate
	logger *zap.Logger
}

// NewModule creates a new module handler
func NewModule(db database.Database, gate *entitlement.Gate, logger *zap.Logger) *Module {
	return &Module{db: db, gate: gate, logger: logger}
}

// List handles GET /api/modules. It returns the full catalogue with the
// caller tenant's enabled state per module, as the gate resolves it.
func (h *Module) List(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)
	ctx := c.Request.Context()

	modules, err := h.db.ListModules(ctx)
	if err != nil {
		h.logger.Error("listing modules failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing modules failed"})
		return
	}

	enabled, err := h.gate.EnabledSet(ctx, user.TenantID)
	if err != nil {
		h.logger.Error("resolving entitlements failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing modules failed"})
		return
	}

	out := make([]dto.ModuleResponse, 0, len(modules))
	for _, m := range modules {
		out = append(out, dto.ModuleResponse{
			ID:          m.ID,
			Name:        m.Name,
			DisplayName: m.DisplayName,
			IsCore:      m.IsCore,
			IsEnabled:   enabled[m.ID],
		})
	}
	c.JSON(http.StatusOK, out)
}

// Check handles GET /api/entitlements/:module. Feature collaborators (the
// AI assistant among them) call this before serving tenant traffic; a
// storage failure is a denial, never a grant.
func (h *Module) Check(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)
	name := c.Param("module")

	enabled, err := h.gate.IsEnabled(c.Request.Context(), user.TenantID, name)
	if errors.Is(err, entitlement.ErrUnknownModule) {
		c.JSON(http.StatusNotFound, gin.H{"error": "module not found"})
		return
	}
	if err != nil {
		h.logger.Error("checking entitlement failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, dto.EntitlementResponse{Module: name, Enabled: enabled})
}

// Set handles PUT /api/modules/:name. It toggles the caller tenant's
// entitlement to a non-core module. Core modules cannot be toggled.
func (h *Module) Set(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)
	ctx := c.Request.Context()

	var req dto.SetModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	module, err := h.db.GetModuleByName(ctx, c.Param("name"))
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "module not found"})
		return
	}
	if err != nil {
		h.logger.Error("loading module failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "updating module failed"})
		return
	}

	if module.IsCore {
		c.JSON(http.StatusConflict, gin.H{"error": "core modules are always enabled"})
		return
	}

	tm := &database.TenantModule{
		TenantID:  user.TenantID,
		ModuleID:  module.ID,
		IsEnabled: req.Enabled,
	}
	if req.Enabled {
		tm.EnabledAt = time.Now()
	}
	if err := h.db.UpsertTenantModule(ctx, tm); err != nil {
		h.logger.Error("updating entitlement failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "updating module failed"})
		return
	}

	h.logger.Info("module entitlement changed",
		zap.Uint("tenantId", user.TenantID),
		zap.String("module", module.Name),
		zap.Bool("enabled", req.Enabled))
	c.JSON(http.StatusOK, dto.ModuleResponse{
		ID:          module.ID,
		Name:        module.Name,
		DisplayName: module.DisplayName,
		IsCore:      module.IsCore,
		IsEnabled:   req.Enabled,
	})
}
