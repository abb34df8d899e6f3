// Package handler exposes the clinics module over HTTP: admin clinic CRUD
// and coverage management for both admin and clinic panel.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dentallead_backend/internal/clinics/service"
	"dentallead_backend/internal/clinics/transport"
	"dentallead_backend/platform/httpkit"
)

// AdminHandler serves the admin clinic management endpoints.
type AdminHandler struct {
	service *service.Service
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(svc *service.Service) *AdminHandler {
	return &AdminHandler{service: svc}
}

// List handles GET /admin/clinics.
func (h *AdminHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	clinics, total, err := h.service.ListClinics(c.Request.Context(), page, pageSize)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ClinicListResponse{OK: true, Data: clinics, Total: total, Page: page, PageSize: pageSize})
}

// Create handles POST /admin/clinics.
func (h *AdminHandler) Create(c *gin.Context) {
	var req transport.CreateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}

	clinic, err := h.service.CreateClinic(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ClinicResponse{OK: true, Data: clinic})
}

// Get handles GET /admin/clinics/:id.
func (h *AdminHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid clinic id", nil)
		return
	}

	clinic, err := h.service.GetClinic(c.Request.Context(), id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ClinicResponse{OK: true, Data: clinic})
}

// Update handles PATCH /admin/clinics/:id.
func (h *AdminHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid clinic id", nil)
		return
	}

	var req transport.UpdateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}

	clinic, err := h.service.UpdateClinic(c.Request.Context(), id, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.ClinicResponse{OK: true, Data: clinic})
}

// CreateCoverage handles POST /admin/clinics/:id/coverages.
func (h *AdminHandler) CreateCoverage(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid clinic id", nil)
		return
	}

	var req transport.CreateCoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}

	cov, err := h.service.CreateCoverage(c.Request.Context(), clinicID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.CoverageResponse{OK: true, Data: cov})
}

// ListCoverages handles GET /admin/clinics/:id/coverages.
func (h *AdminHandler) ListCoverages(c *gin.Context) {
	clinicID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid clinic id", nil)
		return
	}

	coverages, err := h.service.ListCoverages(c.Request.Context(), clinicID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.CoverageListResponse{OK: true, Data: coverages})
}

// PanelHandler serves the clinic's own coverage management.
type PanelHandler struct {
	service *service.Service
}

// NewPanelHandler creates the panel handler.
func NewPanelHandler(svc *service.Service) *PanelHandler {
	return &PanelHandler{service: svc}
}

// ListCoverages handles GET /panel/coverages.
func (h *PanelHandler) ListCoverages(c *gin.Context) {
	clinicID, ok := httpkit.MustGetClinicID(c)
	if !ok {
		return
	}

	coverages, err := h.service.ListCoverages(c.Request.Context(), clinicID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.CoverageListResponse{OK: true, Data: coverages})
}

// CreateCoverage handles POST /panel/coverages.
func (h *PanelHandler) CreateCoverage(c *gin.Context) {
	clinicID, ok := httpkit.MustGetClinicID(c)
	if !ok {
		return
	}

	var req transport.CreateCoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}

	cov, err := h.service.CreateCoverage(c.Request.Context(), clinicID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.CoverageResponse{OK: true, Data: cov})
}

// ToggleCoverage handles PATCH /panel/coverages/:id.
func (h *PanelHandler) ToggleCoverage(c *gin.Context) {
	clinicID, ok := httpkit.MustGetClinicID(c)
	if !ok {
		return
	}

	coverageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid coverage id", nil)
		return
	}

	var req transport.ToggleCoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}

	cov, err := h.service.ToggleCoverage(c.Request.Context(), clinicID, coverageID, *req.IsActive)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.CoverageResponse{OK: true, Data: cov})
}

// DeleteCoverage handles DELETE /panel/coverages/:id.
func (h *PanelHandler) DeleteCoverage(c *gin.Context) {
	clinicID, ok := httpkit.MustGetClinicID(c)
	if !ok {
		return
	}

	coverageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid coverage id", nil)
		return
	}

	if err := h.service.DeleteCoverage(c.Request.Context(), clinicID, coverageID); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
