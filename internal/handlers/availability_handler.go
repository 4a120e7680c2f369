package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/henryympark/pronto2-sub002/internal/errs"
	"github.com/henryympark/pronto2-sub002/internal/services"
)

// AvailabilityHandler handles time-slot availability queries
type AvailabilityHandler struct {
	availabilityService *services.AvailabilityService
	logger              *logrus.Logger
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(
	availabilityService *services.AvailabilityService,
	logger *logrus.Logger,
) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityService: availabilityService,
		logger:              logger,
	}
}

// GetAvailability handles GET /api/v1/services/:id/availability?date=
//
// Availability is computed fresh on every request; the short
// Cache-Control window is a hint for CDN-level coalescing only.
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errs.New(errs.KindValidation, "Invalid service id"))
		return
	}

	date := c.Query("date")
	if date == "" {
		respondError(c, errs.New(errs.KindValidation, "date query parameter is required"))
		return
	}

	availability, err := h.availabilityService.ComputeAvailability(serviceID, date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=30, stale-while-revalidate=60")
	c.JSON(http.StatusOK, availability)
}
