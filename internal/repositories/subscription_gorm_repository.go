package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"petbox/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMSubscriptionRepository is a GORM implementation of SubscriptionRepository.
type GORMSubscriptionRepository struct {
	db *gorm.DB
}

// NewGORMSubscriptionRepository creates a new instance of GORMSubscriptionRepository.
func NewGORMSubscriptionRepository(db *gorm.DB) *GORMSubscriptionRepository {
	return &GORMSubscriptionRepository{
		db: db,
	}
}

// GetByID retrieves a subscription by its ID.
func (r *GORMSubscriptionRepository) GetByID(id string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.First(&sub, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("subscription %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get subscription by ID %s: %w", id, err)
	}
	return &sub, nil
}

// GetForBuyer retrieves all subscriptions belonging to a buyer, newest first.
func (r *GORMSubscriptionRepository) GetForBuyer(buyerID string) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := r.db.Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to get subscriptions for buyer %s: %w", buyerID, err)
	}
	return subs, nil
}

// Create persists a new subscription.
func (r *GORMSubscriptionRepository) Create(sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if err := r.db.Create(sub).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// Update saves all fields of an existing subscription.
func (r *GORMSubscriptionRepository) Update(sub *models.Subscription) error {
	res := r.db.Save(sub)
	if res.Error != nil {
		return fmt.Errorf("failed to update subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("subscription %s: %w", sub.ID, ErrNotFound)
	}
	return nil
}

// FindDue returns every ACTIVE subscription due for fulfillment.
func (r *GORMSubscriptionRepository) FindDue(now time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := r.db.Where("status = ? AND next_delivery_date <= ?", models.SubscriptionActive, now).
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to find due subscriptions: %w", err)
	}
	return subs, nil
}

// AdvancePeriod advances a due subscription by one period. The WHERE guard on
// next_delivery_date is the idempotency marker: once a run has pushed the
// date past now, a second run in the same period matches zero rows.
func (r *GORMSubscriptionRepository) AdvancePeriod(id string, now time.Time) (bool, error) {
	var advanced bool
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var sub models.Subscription
		if err := tx.First(&sub, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("subscription %s: %w", id, ErrNotFound)
			}
			return fmt.Errorf("failed to load subscription %s: %w", id, err)
		}

		remaining := sub.RemainingMonths - 1
		if remaining < 0 {
			remaining = 0
		}
		status := sub.Status
		if remaining == 0 {
			status = models.SubscriptionCompleted
		}

		res := tx.Model(&models.Subscription{}).
			Where("id = ? AND status = ? AND next_delivery_date <= ?",
				id, models.SubscriptionActive, now).
			Updates(map[string]interface{}{
				"remaining_months":   remaining,
				"next_delivery_date": sub.NextDeliveryDate.AddDate(0, 1, 0),
				"status":             status,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to advance subscription %s: %w", id, res.Error)
		}
		advanced = res.RowsAffected > 0
		return nil
	})
	return advanced, err
}

// ClaimRun inserts the run-claim row. The primary key on run_date makes this
// an insert-wins race; the loser gets a duplicate-key error.
func (r *GORMSubscriptionRepository) ClaimRun(runDate string, startedAt time.Time) error {
	run := models.FulfillmentRun{RunDate: runDate, StartedAt: startedAt}
	if err := r.db.Create(&run).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
			return fmt.Errorf("run %s: %w", runDate, ErrRunAlreadyClaimed)
		}
		return fmt.Errorf("failed to claim fulfillment run %s: %w", runDate, err)
	}
	return nil
}

// isDuplicateKeyError covers drivers that report constraint violations as
// plain errors rather than gorm.ErrDuplicatedKey.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
