package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henryympark/pronto2-sub002/internal/config"
	"github.com/henryympark/pronto2-sub002/internal/services"
)

func setupPricingTest() *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewPricingHandler(services.NewPricingService(config.DiscountConfig{
		BlockMinutes:   30,
		PerBlockAmount: 11000,
	}))
	router := gin.New()
	router.POST("/api/v1/pricing/quote", handler.Quote)
	return router
}

func TestQuote(t *testing.T) {
	router := setupPricingTest()

	tests := []struct {
		name     string
		req      QuoteRequest
		discount int64
		final    int64
	}{
		{
			name:     "Partial Block Rounds Down",
			req:      QuoteRequest{OriginalPrice: 44000, AccumulatedMinutes: 45, CouponMinutes: 30},
			discount: 22000,
			final:    22000,
		},
		{
			name:     "No Balances",
			req:      QuoteRequest{OriginalPrice: 33000},
			discount: 0,
			final:    33000,
		},
		{
			name:     "Discount Exceeds Price Clamps To Zero",
			req:      QuoteRequest{OriginalPrice: 10000, AccumulatedMinutes: 60, CouponMinutes: 0},
			discount: 22000,
			final:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.req)
			require.NoError(t, err)

			req := httptest.NewRequest("POST", "/api/v1/pricing/quote", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var resp QuoteResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.discount, resp.Discount)
			assert.Equal(t, tt.final, resp.FinalPrice)
		})
	}
}

func TestQuote_InvalidBody(t *testing.T) {
	router := setupPricingTest()

	req := httptest.NewRequest("POST", "/api/v1/pricing/quote", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
