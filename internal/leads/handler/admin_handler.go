package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dentallead_backend/internal/leads/domain"
	"dentallead_backend/internal/leads/repository"
	"dentallead_backend/internal/leads/service"
	"dentallead_backend/internal/leads/transport"
	"dentallead_backend/platform/httpkit"
)

// AdminHandler serves the distribution audit log and assignment listings.
type AdminHandler struct {
	service *service.Service
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(svc *service.Service) *AdminHandler {
	return &AdminHandler{service: svc}
}

// ListDistributionLogs handles GET /admin/distribution-logs.
func (h *AdminHandler) ListDistributionLogs(c *gin.Context) {
	page, pageSize := paginationParams(c)
	params := repository.ListLogsParams{
		City:     c.Query("city"),
		Service:  c.Query("service"),
		Reason:   domain.Reason(c.Query("reason")),
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

	if raw := c.Query("assigned"); raw != "" {
		assigned, err := strconv.ParseBool(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid assigned filter", nil)
			return
		}
		params.Assigned = &assigned
	}

	logs, total, err := h.service.ListDistributionLogs(c.Request.Context(), params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.DistributionLogListResponse{OK: true, Data: logs, Total: total, Page: page, PageSize: pageSize})
}

// ListAssignments handles GET /admin/assignments.
func (h *AdminHandler) ListAssignments(c *gin.Context) {
	page, pageSize := paginationParams(c)
	params := repository.ListAssignmentsParams{Page: page, PageSize: pageSize}

	if raw := c.Query("clinicId"); raw != "" {
		clinicID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid clinic id", nil)
			return
		}
		params.ClinicID = &clinicID
	}

	records, total, err := h.service.ListAssignments(c.Request.Context(), params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.AssignmentListResponse{OK: true, Data: records, Total: total, Page: page, PageSize: pageSize})
}

// paginationParams reads page/pageSize query params with sane defaults.
func paginationParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if err != nil || pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
