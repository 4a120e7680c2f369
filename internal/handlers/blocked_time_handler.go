package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/henryympark/pronto2-sub002/internal/database"
	"github.com/henryympark/pronto2-sub002/internal/errs"
	"github.com/henryympark/pronto2-sub002/internal/middleware"
	"github.com/henryympark/pronto2-sub002/internal/models"
)

// BlockedTimeHandler manages operator-defined blocked time windows.
// Reads are public (they back the availability UI); writes require an
// admin token.
type BlockedTimeHandler struct {
	reservationRepo *database.ReservationRepository
	logger          *logrus.Logger
}

// NewBlockedTimeHandler creates a new blocked time handler
func NewBlockedTimeHandler(
	reservationRepo *database.ReservationRepository,
	logger *logrus.Logger,
) *BlockedTimeHandler {
	return &BlockedTimeHandler{
		reservationRepo: reservationRepo,
		logger:          logger,
	}
}

// List handles GET /api/v1/services/:id/blocked-times?date=
func (h *BlockedTimeHandler) List(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errs.New(errs.KindValidation, "Invalid service id"))
		return
	}

	date := c.Query("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		respondError(c, errs.New(errs.KindValidation, "date must be formatted as YYYY-MM-DD"))
		return
	}

	blocks, err := h.reservationRepo.GetBlockedTimes(serviceID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	if blocks == nil {
		blocks = []models.BlockedTime{}
	}

	c.JSON(http.StatusOK, gin.H{
		"serviceId":    serviceID,
		"date":         date,
		"blockedTimes": blocks,
	})
}

// Create handles POST /api/v1/services/:id/blocked-times (admin only)
func (h *BlockedTimeHandler) Create(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errs.New(errs.KindValidation, "Invalid service id"))
		return
	}

	var req models.CreateBlockedTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.New(errs.KindValidation, "Invalid request body"))
		return
	}

	if _, err := time.Parse("2006-01-02", req.BlockedDate); err != nil {
		respondError(c, errs.New(errs.KindValidation, "blockedDate must be formatted as YYYY-MM-DD"))
		return
	}

	start, err := models.ParseClock(req.StartTime)
	if err != nil {
		respondError(c, errs.New(errs.KindValidation, "startTime must be formatted as HH:MM"))
		return
	}
	end, err := models.ParseClock(req.EndTime)
	if err != nil {
		respondError(c, errs.New(errs.KindValidation, "endTime must be formatted as HH:MM"))
		return
	}
	if start >= end {
		respondError(c, errs.New(errs.KindValidation, "startTime must be before endTime"))
		return
	}

	block := &models.BlockedTime{
		ServiceID:   serviceID,
		BlockedDate: req.BlockedDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Reason:      req.Reason,
	}

	if err := h.reservationRepo.CreateBlockedTime(block); err != nil {
		respondError(c, err)
		return
	}

	userCtx, _ := middleware.GetUserContext(c)
	h.logger.WithFields(logrus.Fields{
		"block_id":   block.ID,
		"service_id": serviceID,
		"date":       req.BlockedDate,
		"admin_id":   userCtx.UserID,
	}).Info("Blocked time created")

	c.JSON(http.StatusCreated, block)
}

// Delete handles DELETE /api/v1/blocked-times/:id (admin only)
func (h *BlockedTimeHandler) Delete(c *gin.Context) {
	blockID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errs.New(errs.KindValidation, "Invalid blocked time id"))
		return
	}

	if err := h.reservationRepo.DeleteBlockedTime(blockID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
