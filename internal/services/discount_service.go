package services

import (
	"errors"
	"fmt"

	"petbox/internal/repositories"
)

// PriceQuote is the server-computed price for one cart line across its whole
// subscription duration.
type PriceQuote struct {
	FinalPrice     float64 `json:"final_price"`
	DiscountAmount float64 `json:"discount_amount"`
	Percentage     float64 `json:"percentage"`
}

// DiscountService computes authoritative prices from the discount rule table.
// Checkout quoting and order materialization both call it, so the two can
// never drift apart; client-sent prices are never trusted.
type DiscountService struct {
	discountRepo repositories.DiscountRepository
}

// NewDiscountService creates a new DiscountService.
func NewDiscountService(discountRepo repositories.DiscountRepository) *DiscountService {
	return &DiscountService{
		discountRepo: discountRepo,
	}
}

// CalculatePrice prices one line: basePricePerPeriod across duration periods,
// discounted per the rule for that duration. A duration with no rule gets
// percentage 0. Durations below one period are charged as a single period.
func (s *DiscountService) CalculatePrice(basePricePerPeriod float64, durationMonths int) (PriceQuote, error) {
	periods := durationMonths
	if periods < 1 {
		periods = 1
	}

	gross := basePricePerPeriod * float64(periods)

	rule, err := s.discountRepo.GetByDuration(durationMonths)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return PriceQuote{FinalPrice: gross, DiscountAmount: 0, Percentage: 0}, nil
		}
		return PriceQuote{}, fmt.Errorf("failed to look up discount rule: %w", err)
	}

	discount := gross * rule.Percentage / 100
	return PriceQuote{
		FinalPrice:     gross - discount,
		DiscountAmount: discount,
		Percentage:     rule.Percentage,
	}, nil
}
