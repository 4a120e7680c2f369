package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/henryympark/pronto2-sub002/internal/config"
)

func testPricingService() *PricingService {
	return NewPricingService(config.DiscountConfig{
		BlockMinutes:   30,
		PerBlockAmount: 11000,
	})
}

func TestDiscountFor(t *testing.T) {
	service := testPricingService()

	t.Run("Whole Blocks Only", func(t *testing.T) {
		// 45 accumulated minutes rounds down to one block.
		assert.Equal(t, int64(22000), service.DiscountFor(45, 30))
	})

	t.Run("Independent Balances", func(t *testing.T) {
		assert.Equal(t, int64(33000), service.DiscountFor(60, 30))
		assert.Equal(t, int64(0), service.DiscountFor(29, 29))
	})

	t.Run("Zero And Negative", func(t *testing.T) {
		assert.Equal(t, int64(0), service.DiscountFor(0, 0))
		assert.Equal(t, int64(0), service.DiscountFor(-30, -60))
	})

	t.Run("Large Balances", func(t *testing.T) {
		assert.Equal(t, int64(44000), service.DiscountFor(90, 45))
	})
}

func TestFinalPrice(t *testing.T) {
	service := testPricingService()

	t.Run("Normal Discount", func(t *testing.T) {
		assert.Equal(t, int64(22000), service.FinalPrice(44000, 22000))
	})

	t.Run("Clamped At Zero", func(t *testing.T) {
		assert.Equal(t, int64(0), service.FinalPrice(10000, 22000))
	})

	t.Run("No Discount", func(t *testing.T) {
		assert.Equal(t, int64(44000), service.FinalPrice(44000, 0))
	})
}
