// Package subscriptions is the quota ledger: grants of leads a clinic has
// paid for, their lifecycle, and the admin/panel views over them. Quota is
// only ever consumed by the distribution transaction in the leads module.
package subscriptions

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"dentallead_backend/internal/events"
	"dentallead_backend/internal/http"
	"dentallead_backend/internal/subscriptions/handler"
	"dentallead_backend/internal/subscriptions/repository"
	"dentallead_backend/internal/subscriptions/service"
	"dentallead_backend/platform/logger"
	"dentallead_backend/platform/validator"
)

// Module wires the subscriptions bounded context together.
type Module struct {
	service *service.Service
	admin   *handler.AdminHandler
	panel   *handler.PanelHandler
}

// NewModule creates the subscriptions module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, val, log)

	return &Module{
		service: svc,
		admin:   handler.NewAdminHandler(svc),
		panel:   handler.NewPanelHandler(svc),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "subscriptions" }

// Service exposes the service for the maintenance worker.
func (m *Module) Service() *service.Service { return m.service }

// RegisterRoutes mounts the module's routes.
func (m *Module) RegisterRoutes(ctx *http.RouterContext) {
	ctx.Admin.GET("/subscriptions", m.admin.List)
	ctx.Admin.POST("/subscriptions", m.admin.Create)
	ctx.Admin.POST("/quota/add", m.admin.TopUp)

	ctx.Panel.GET("/subscription", m.panel.CurrentGrant)
}
