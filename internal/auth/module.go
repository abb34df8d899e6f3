// Package auth handles sign-in and account management for admins and
// clinic panel users.
package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"dentallead_backend/internal/auth/handler"
	"dentallead_backend/internal/auth/repository"
	"dentallead_backend/internal/auth/service"
	"dentallead_backend/internal/http"
	"dentallead_backend/platform/config"
	"dentallead_backend/platform/logger"
	"dentallead_backend/platform/validator"
)

// Module wires the auth bounded context together.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the auth module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, cfg config.AuthServiceConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, val, cfg, log)

	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "auth" }

// RegisterRoutes mounts the module's routes. Login sits behind the stricter
// auth rate limiter to slow down credential stuffing.
func (m *Module) RegisterRoutes(ctx *http.RouterContext) {
	ctx.V1.POST("/auth/login", ctx.AuthRateLimiter.RateLimit(), m.handler.Login)

	ctx.Admin.POST("/users", m.handler.CreateUser)
}
