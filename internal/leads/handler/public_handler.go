// Package handler exposes the leads module over HTTP: the public intake
// endpoint, the clinic panel, and the admin audit views.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dentallead_backend/internal/leads/service"
	"dentallead_backend/internal/leads/transport"
	"dentallead_backend/platform/apperr"
	"dentallead_backend/platform/httpkit"
	"dentallead_backend/platform/logger"
)

// PublicHandler serves the unauthenticated intake endpoint.
type PublicHandler struct {
	service *service.Service
	log     *logger.Logger
}

// NewPublicHandler creates the public intake handler.
func NewPublicHandler(svc *service.Service, log *logger.Logger) *PublicHandler {
	return &PublicHandler{service: svc, log: log}
}

// Create handles POST /public/leads. Honeypot hits get a success-shaped
// body so bots cannot tell they were caught.
func (h *PublicHandler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", nil)
		return
	}

	res, err := h.service.Submit(c.Request.Context(), req, service.SubmitMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		if appErr, ok := err.(*apperr.Error); ok && appErr.Code == "RATE_LIMIT" {
			retryAfterSec := 1
			if details, ok := appErr.Details.(map[string]int); ok && details["retryAfterSec"] > 0 {
				retryAfterSec = details["retryAfterSec"]
			}
			c.Header("Retry-After", strconv.Itoa(retryAfterSec))
			httpkit.JSON(c, http.StatusTooManyRequests, transport.RateLimitedResponse{
				Code:          "RATE_LIMIT",
				RetryAfterSec: retryAfterSec,
			})
			return
		}
		httpkit.HandleError(c, err)
		return
	}

	if res.Spam {
		httpkit.OK(c, transport.SpamAcceptedResponse{OK: true, Spam: true})
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.LeadSubmittedResponse{
		OK:       true,
		Assigned: res.Assigned,
		LeadID:   res.LeadID,
		ClinicID: res.ClinicID,
	})
}
