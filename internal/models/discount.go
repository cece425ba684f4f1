package models

// DiscountRule maps a subscription duration to a discount percentage off the
// per-period list price. Read-only at runtime; seeded with defaults on first
// boot.
type DiscountRule struct {
	DurationMonths int     `json:"duration_months" gorm:"primaryKey"`
	Percentage     float64 `json:"percentage"`
}

// DefaultDiscountRules are inserted when the table is empty.
var DefaultDiscountRules = []DiscountRule{
	{DurationMonths: 3, Percentage: 5},
	{DurationMonths: 6, Percentage: 7},
	{DurationMonths: 12, Percentage: 10},
}
