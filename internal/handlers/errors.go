package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/henryympark/pronto2-sub002/internal/errs"
	"github.com/henryympark/pronto2-sub002/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// statusFor maps an error kind to its HTTP status. Server-side faults
// collapse to 500 so internals never leak through the API.
func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation, errs.KindIntegrity:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindExpired:
		return http.StatusGone
	case errs.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the canonical error body for a service error.
func respondError(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	status := statusFor(kind)

	message := errs.MessageOf(err)
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}

	if status == http.StatusTooManyRequests {
		var rlErr *services.RateLimitError
		if errors.As(err, &rlErr) {
			seconds := int(time.Until(rlErr.RetryAfter).Seconds()) + 1
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
		}
	}

	c.JSON(status, ErrorResponse{
		Error:   string(kind),
		Message: message,
	})
}
