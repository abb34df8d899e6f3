package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dentallead_backend/internal/leads/service"
	"dentallead_backend/internal/leads/transport"
	"dentallead_backend/platform/httpkit"
)

// PanelHandler serves the clinic panel's lead views. Every route is scoped
// to the authenticated clinic; a clinic can never see another clinic's leads.
type PanelHandler struct {
	service *service.Service
}

// NewPanelHandler creates the clinic panel handler.
func NewPanelHandler(svc *service.Service) *PanelHandler {
	return &PanelHandler{service: svc}
}

// List handles GET /panel/leads.
func (h *PanelHandler) List(c *gin.Context) {
	clinicID, ok := httpkit.MustGetClinicID(c)
	if !ok {
		return
	}

	page, pageSize := paginationParams(c)
	leads, total, err := h.service.ListForClinic(c.Request.Context(), clinicID, page, pageSize)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.LeadListResponse{OK: true, Data: leads, Total: total, Page: page, PageSize: pageSize})
}

// Get handles GET /panel/leads/:id.
func (h *PanelHandler) Get(c *gin.Context) {
	clinicID, ok := httpkit.MustGetClinicID(c)
	if !ok {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid lead id", nil)
		return
	}

	lead, err := h.service.GetForClinic(c.Request.Context(), clinicID, leadID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.LeadResponse{OK: true, Data: lead})
}

// UpdateStatus handles PATCH /panel/leads/:id.
func (h *PanelHandler) UpdateStatus(c *gin.Context) {
	clinicID, ok := httpkit.MustGetClinicID(c)
	if !ok {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid lead id", nil)
		return
	}

	var req transport.UpdateLeadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}

	lead, err := h.service.UpdateStatus(c.Request.Context(), clinicID, leadID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.LeadResponse{OK: true, Data: lead})
}
