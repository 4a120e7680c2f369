package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/henryympark/pronto2-sub002/internal/errs"
	"github.com/henryympark/pronto2-sub002/internal/models"
	"github.com/henryympark/pronto2-sub002/internal/services"
	"github.com/henryympark/pronto2-sub002/internal/utils"
)

// StagingHandler handles pre-authentication reservation staging requests
type StagingHandler struct {
	stagingService   *services.StagingService
	rateLimitService *services.RateLimitService
	logger           *logrus.Logger
}

// NewStagingHandler creates a new staging handler
func NewStagingHandler(
	stagingService *services.StagingService,
	rateLimitService *services.RateLimitService,
	logger *logrus.Logger,
) *StagingHandler {
	return &StagingHandler{
		stagingService:   stagingService,
		rateLimitService: rateLimitService,
		logger:           logger,
	}
}

// Stage handles POST /api/v1/staging
//
// Encrypts the private half of an in-progress booking form and parks it
// server-side while the visitor goes through login. Unauthenticated by
// design, so the endpoint is rate limited per client IP.
func (h *StagingHandler) Stage(c *gin.Context) {
	clientIP := utils.GetRealIP(c)

	if err := h.rateLimitService.CheckAndRecord(clientIP); err != nil {
		h.logger.WithFields(logrus.Fields{
			"ip":   clientIP,
			"path": c.Request.URL.Path,
		}).Warn("Staging request rate limited")
		respondError(c, err)
		return
	}

	var req models.StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.New(errs.KindValidation, "Invalid request body"))
		return
	}

	fp := services.ClientFingerprint{
		UserAgent: utils.GetUserAgent(c),
		IPAddress: clientIP,
	}

	resp, err := h.stagingService.Stage(&req, fp)
	if err != nil {
		respondError(c, err)
		return
	}

	// Advisory device fingerprint; never gates access.
	device := utils.ParseUserAgent(fp.UserAgent)
	h.logger.WithFields(logrus.Fields{
		"session_id":  resp.SessionID,
		"ip":          clientIP,
		"device_type": device.DeviceType,
		"os":          device.OS,
		"browser":     device.Browser,
		"is_bot":      device.IsBot,
	}).Info("Booking staged")

	c.JSON(http.StatusCreated, resp)
}

// Restore handles POST /api/v1/staging/restore
//
// Returns the decrypted private data for a live session. The record
// stays in place; clients call Discard once the booking is confirmed.
func (h *StagingHandler) Restore(c *gin.Context) {
	var req models.RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.New(errs.KindValidation, "Invalid request body"))
		return
	}

	data, err := h.stagingService.Restore(req.SessionID)
	if err != nil {
		if errs.Is(err, errs.KindExpired) {
			c.JSON(http.StatusGone, models.RestoreResponse{IsExpired: true})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RestoreResponse{PrivateData: data})
}

// Status handles GET /api/v1/staging/status?sessionId=
func (h *StagingHandler) Status(c *gin.Context) {
	sessionID := c.Query("sessionId")

	status, err := h.stagingService.Status(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// Discard handles DELETE /api/v1/staging?sessionId=
func (h *StagingHandler) Discard(c *gin.Context) {
	sessionID := c.Query("sessionId")

	if err := h.stagingService.Discard(sessionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
