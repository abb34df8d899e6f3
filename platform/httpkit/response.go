// Package httpkit provides HTTP response utilities.
// This is part of the platform layer and contains no business logic.
package httpkit

import (
	"net/http"

	"dentallead_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error response format. Code is a stable
// machine-readable identifier from a closed vocabulary; no internal error
// detail crosses the boundary outside of it.
type ErrorResponse struct {
	OK      bool        `json:"ok"`
	Code    string      `json:"code"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK sends a 200 OK response with the given payload.
func OK(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

// Error sends an error response with the given status code, code, and message.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, ErrorResponse{OK: false, Code: code, Error: message, Details: details})
}

// HandleError maps domain errors to HTTP responses.
// If the error is a typed *apperr.Error, it uses the error's Kind to determine
// the HTTP status code and its Code for the response body.
// Returns true if an error was handled, false otherwise.
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := err.(*apperr.Error); ok {
		code := domainErr.Code
		if code == "" {
			code = defaultCode(domainErr.Kind)
		}
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			OK:      false,
			Code:    code,
			Error:   domainErr.Message,
			Details: domainErr.Details,
		})
		return true
	}

	// Non-typed errors never leak internals to the caller.
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		OK:    false,
		Code:  "UNKNOWN_ERROR",
		Error: "unexpected error",
	})
	return true
}

func defaultCode(kind apperr.Kind) string {
	switch kind {
	case apperr.KindNotFound:
		return "NOT_FOUND"
	case apperr.KindValidation, apperr.KindBadRequest:
		return "VALIDATION_ERROR"
	case apperr.KindConflict:
		return "CONFLICT"
	case apperr.KindForbidden:
		return "FORBIDDEN"
	case apperr.KindUnauthorized:
		return "UNAUTHORIZED"
	case apperr.KindTooManyRequests:
		return "RATE_LIMIT"
	case apperr.KindInternal:
		return "INTERNAL_ERROR"
	default:
		return "BAD_REQUEST"
	}
}
