package repositories

import (
	"time"

	"petbox/internal/models"
)

// SubscriptionRepository defines the interface for subscription data access.
type SubscriptionRepository interface {
	GetByID(id string) (*models.Subscription, error)
	GetForBuyer(buyerID string) ([]models.Subscription, error)
	Create(sub *models.Subscription) error
	Update(sub *models.Subscription) error
	// FindDue returns every ACTIVE subscription whose next delivery date is
	// at or before now.
	FindDue(now time.Time) ([]models.Subscription, error)
	// AdvancePeriod consumes one fulfillment period: it decrements
	// remaining_months and pushes next_delivery_date one calendar month,
	// guarded on the delivery date still being due. It reports whether this
	// call actually advanced the row, which makes a same-period re-run a
	// no-op.
	AdvancePeriod(id string, now time.Time) (advanced bool, err error)
	// ClaimRun inserts the single-runner claim row for the given run date
	// and fails with ErrRunAlreadyClaimed when another instance won.
	ClaimRun(runDate string, startedAt time.Time) error
}
