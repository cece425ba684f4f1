package repositories

import (
	"fmt"

	"petbox/internal/models"

	"gorm.io/gorm"
)

// GORMDiscountRepository is a GORM implementation of DiscountRepository.
type GORMDiscountRepository struct {
	db *gorm.DB
}

// NewGORMDiscountRepository creates a new instance of GORMDiscountRepository.
func NewGORMDiscountRepository(db *gorm.DB) *GORMDiscountRepository {
	return &GORMDiscountRepository{
		db: db,
	}
}

// GetByDuration retrieves the discount rule for a subscription duration.
func (r *GORMDiscountRepository) GetByDuration(durationMonths int) (*models.DiscountRule, error) {
	var rule models.DiscountRule
	if err := r.db.First(&rule, "duration_months = ?", durationMonths).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("discount rule for %d months: %w", durationMonths, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get discount rule for %d months: %w", durationMonths, err)
	}
	return &rule, nil
}

// Seed inserts the default rules on first boot. An already-populated table is
// left untouched.
func (r *GORMDiscountRepository) Seed() error {
	var count int64
	if err := r.db.Model(&models.DiscountRule{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count discount rules: %w", err)
	}
	if count > 0 {
		return nil
	}
	rules := models.DefaultDiscountRules
	if err := r.db.Create(&rules).Error; err != nil {
		return fmt.Errorf("failed to seed discount rules: %w", err)
	}
	return nil
}
