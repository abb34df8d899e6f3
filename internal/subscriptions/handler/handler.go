// Package handler exposes the subscriptions module over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dentallead_backend/internal/subscriptions/repository"
	"dentallead_backend/internal/subscriptions/service"
	"dentallead_backend/internal/subscriptions/transport"
	"dentallead_backend/platform/httpkit"
)

// AdminHandler serves the admin grant management endpoints.
type AdminHandler struct {
	service *service.Service
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(svc *service.Service) *AdminHandler {
	return &AdminHandler{service: svc}
}

// List handles GET /admin/subscriptions.
func (h *AdminHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	params := repository.ListParams{
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	}

	if raw := c.Query("clinicId"); raw != "" {
		clinicID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid clinic id", nil)
			return
		}
		params.ClinicID = &clinicID
	}

	subs, total, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.SubscriptionListResponse{OK: true, Data: subs, Total: total, Page: params.Page, PageSize: params.PageSize})
}

// Create handles POST /admin/subscriptions.
func (h *AdminHandler) Create(c *gin.Context) {
	var req transport.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}

	sub, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.SubscriptionResponse{OK: true, Data: sub})
}

// TopUp handles POST /admin/quota/add. This is the entry point the payment
// collaborator calls after a purchase.
func (h *AdminHandler) TopUp(c *gin.Context) {
	var req transport.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}

	sub, created, err := h.service.TopUp(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpkit.JSON(c, status, transport.TopUpResponse{OK: true, Created: created, Data: sub})
}

// PanelHandler serves the clinic's own subscription view.
type PanelHandler struct {
	service *service.Service
}

// NewPanelHandler creates the panel handler.
func NewPanelHandler(svc *service.Service) *PanelHandler {
	return &PanelHandler{service: svc}
}

// CurrentGrant handles GET /panel/subscription.
func (h *PanelHandler) CurrentGrant(c *gin.Context) {
	clinicID, ok := httpkit.MustGetClinicID(c)
	if !ok {
		return
	}

	sub, err := h.service.CurrentGrant(c.Request.Context(), clinicID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.CurrentGrantResponse{OK: true, Data: sub, QuotaRemaining: sub.QuotaRemaining()})
}
