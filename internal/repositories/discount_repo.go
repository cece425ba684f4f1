package repositories

import (
	"petbox/internal/models"
)

// DiscountRepository exposes the read-only duration/percentage lookup table.
type DiscountRepository interface {
	GetByDuration(durationMonths int) (*models.DiscountRule, error)
	// Seed inserts the default rules when the table is empty.
	Seed() error
}
