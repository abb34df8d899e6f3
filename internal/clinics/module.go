// Package clinics manages the practices that receive leads and the
// (city, service) coverage pairs they compete for.
package clinics

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"dentallead_backend/internal/clinics/handler"
	"dentallead_backend/internal/clinics/repository"
	"dentallead_backend/internal/clinics/service"
	"dentallead_backend/internal/http"
	"dentallead_backend/platform/validator"
)

// Module wires the clinics bounded context together.
type Module struct {
	service *service.Service
	admin   *handler.AdminHandler
	panel   *handler.PanelHandler
}

// NewModule creates the clinics module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, val)

	return &Module{
		service: svc,
		admin:   handler.NewAdminHandler(svc),
		panel:   handler.NewPanelHandler(svc),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "clinics" }

// Service exposes the service for cross-module wiring (notification).
func (m *Module) Service() *service.Service { return m.service }

// RegisterRoutes mounts the module's routes.
func (m *Module) RegisterRoutes(ctx *http.RouterContext) {
	admin := ctx.Admin.Group("/clinics")
	admin.GET("", m.admin.List)
	admin.POST("", m.admin.Create)
	admin.GET("/:id", m.admin.Get)
	admin.PATCH("/:id", m.admin.Update)
	admin.GET("/:id/coverages", m.admin.ListCoverages)
	admin.POST("/:id/coverages", m.admin.CreateCoverage)

	panel := ctx.Panel.Group("/coverages")
	panel.GET("", m.panel.ListCoverages)
	panel.POST("", m.panel.CreateCoverage)
	panel.PATCH("/:id", m.panel.ToggleCoverage)
	panel.DELETE("/:id", m.panel.DeleteCoverage)
}
