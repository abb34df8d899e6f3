// Package handler exposes the auth module over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dentallead_backend/internal/auth/service"
	"dentallead_backend/internal/auth/transport"
	"dentallead_backend/platform/httpkit"
)

// Handler serves login and user management endpoints.
type Handler struct {
	service *service.Service
}

// New creates the auth handler.
func New(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, res)
}

// CreateUser handles POST /admin/users.
func (h *Handler) CreateUser(c *gin.Context) {
	var req transport.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.UserResponse{
		OK:       true,
		ID:       user.ID,
		Email:    user.Email,
		Role:     user.Role,
		ClinicID: user.ClinicID,
	})
}
