package services

import (
	"github.com/henryympark/pronto2-sub002/internal/config"
)

// PricingService converts accumulated-time and coupon minute balances
// into a monetary discount and a final price. Pure computation, no I/O.
type PricingService struct {
	config config.DiscountConfig
}

// NewPricingService creates a new PricingService
func NewPricingService(cfg config.DiscountConfig) *PricingService {
	return &PricingService{config: cfg}
}

// DiscountFor returns the flat discount amount for the given minute
// balances. Only whole blocks count: 45 accumulated minutes with a
// 30-minute block size is one block. Accumulated and coupon blocks are
// computed independently, then summed.
func (p *PricingService) DiscountFor(accumulatedMinutes, couponMinutes int) int64 {
	return p.blockDiscount(accumulatedMinutes) + p.blockDiscount(couponMinutes)
}

func (p *PricingService) blockDiscount(minutes int) int64 {
	if minutes <= 0 {
		return 0
	}
	blocks := minutes / p.config.BlockMinutes
	return int64(blocks) * p.config.PerBlockAmount
}

// FinalPrice subtracts the discount from the original price, clamped at
// zero: a discount can never produce a negative payable amount.
func (p *PricingService) FinalPrice(original, discount int64) int64 {
	final := original - discount
	if final < 0 {
		return 0
	}
	return final
}
