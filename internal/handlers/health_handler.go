package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/henryympark/pronto2-sub002/internal/database"
)

// Version is the service version reported by the health endpoint.
// Overridden at build time with -ldflags "-X ...".
var Version = "dev"

// HealthHandler reports service liveness and database reachability
type HealthHandler struct {
	db database.DB
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK

	if err := h.db.Ping(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
