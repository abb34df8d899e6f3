// Package leads is the core of the service: public lead intake, the
// distribution engine that routes each lead to a clinic, the clinic panel
// views, and the admin audit log.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"dentallead_backend/internal/events"
	"dentallead_backend/internal/http"
	"dentallead_backend/internal/leads/handler"
	"dentallead_backend/internal/leads/intake"
	"dentallead_backend/internal/leads/repository"
	"dentallead_backend/internal/leads/service"
	"dentallead_backend/platform/config"
	"dentallead_backend/platform/logger"
	"dentallead_backend/platform/ratelimit"
	"dentallead_backend/platform/validator"
)

// Module wires the leads bounded context together.
type Module struct {
	service *service.Service
	public  *handler.PublicHandler
	panel   *handler.PanelHandler
	admin   *handler.AdminHandler
}

// NewModule creates the leads module. The limiter is injected so single
// instance deployments can run in-memory while scaled ones share Redis.
func NewModule(pool *pgxpool.Pool, bus events.Bus, limiter ratelimit.Limiter, val *validator.Validator, cfg config.IntakeConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	guard := intake.NewGuard(limiter)
	svc := service.New(repo, guard, bus, val, cfg, log)

	return &Module{
		service: svc,
		public:  handler.NewPublicHandler(svc, log),
		panel:   handler.NewPanelHandler(svc),
		admin:   handler.NewAdminHandler(svc),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "leads" }

// Service exposes the service for workers and event wiring.
func (m *Module) Service() *service.Service { return m.service }

// RegisterRoutes mounts the module's routes.
func (m *Module) RegisterRoutes(ctx *http.RouterContext) {
	ctx.Public.POST("/leads", m.public.Create)

	panel := ctx.Panel.Group("/leads")
	panel.GET("", m.panel.List)
	panel.GET("/:id", m.panel.Get)
	panel.PATCH("/:id", m.panel.UpdateStatus)

	ctx.Admin.GET("/distribution-logs", m.admin.ListDistributionLogs)
	ctx.Admin.GET("/assignments", m.admin.ListAssignments)
}
