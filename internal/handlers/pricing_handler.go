package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/henryympark/pronto2-sub002/internal/errs"
	"github.com/henryympark/pronto2-sub002/internal/services"
)

// PricingHandler exposes discount quoting for the booking confirmation
// flow. Pure computation; persisting the quoted amounts belongs to the
// confirmation write path.
type PricingHandler struct {
	pricingService *services.PricingService
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(pricingService *services.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

// QuoteRequest is the body of POST /api/v1/pricing/quote
type QuoteRequest struct {
	OriginalPrice      int64 `json:"originalPrice" binding:"min=0"`
	AccumulatedMinutes int   `json:"accumulatedMinutes"`
	CouponMinutes      int   `json:"couponMinutes"`
}

// QuoteResponse carries the computed discount and payable amount
type QuoteResponse struct {
	OriginalPrice int64 `json:"originalPrice"`
	Discount      int64 `json:"discount"`
	FinalPrice    int64 `json:"finalPrice"`
}

// Quote handles POST /api/v1/pricing/quote
func (h *PricingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.New(errs.KindValidation, "Invalid request body"))
		return
	}

	discount := h.pricingService.DiscountFor(req.AccumulatedMinutes, req.CouponMinutes)

	c.JSON(http.StatusOK, QuoteResponse{
		OriginalPrice: req.OriginalPrice,
		Discount:      discount,
		FinalPrice:    h.pricingService.FinalPrice(req.OriginalPrice, discount),
	})
}
