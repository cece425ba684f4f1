package models

import "time"

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
	SubscriptionCompleted SubscriptionStatus = "COMPLETED"
	SubscriptionUpgraded  SubscriptionStatus = "UPGRADED"
	// SubscriptionPaused is declared for forward compatibility; no transition
	// currently enters or leaves it.
	SubscriptionPaused SubscriptionStatus = "PAUSED"
)

// subscriptionTransitions lists the legal moves. CANCELLED, COMPLETED and
// UPGRADED are terminal: a renewal after completion creates a brand-new
// subscription rather than reviving the old row.
var subscriptionTransitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionActive: {SubscriptionCancelled, SubscriptionCompleted, SubscriptionUpgraded},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	for _, allowed := range subscriptionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s SubscriptionStatus) String() string {
	return string(s)
}

// Subscription is one recurring box. RemainingMonths counts fulfillment
// periods left; the invariant 0 <= RemainingMonths <= TotalMonths holds at
// every commit point.
type Subscription struct {
	ID                 string             `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerID            string             `json:"buyer_id,omitempty" gorm:"index;type:varchar(36)"`
	PetID              string             `json:"pet_id,omitempty" gorm:"type:varchar(36)"`
	ProductID          string             `json:"product_id" gorm:"type:varchar(36)"`
	TotalMonths        int                `json:"total_months"`
	RemainingMonths    int                `json:"remaining_months"`
	StartDate          time.Time          `json:"start_date"`
	NextDeliveryDate   time.Time          `json:"next_delivery_date" gorm:"index"`
	Status             SubscriptionStatus `json:"status" gorm:"type:varchar(20);index"`
	CancellationReason string             `json:"cancellation_reason,omitempty" gorm:"type:varchar(255)"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// FulfillmentRun is the scheduler's single-runner claim row: one row per run
// date, taken by the instance that wins the unique insert.
type FulfillmentRun struct {
	RunDate   string    `gorm:"primaryKey;type:varchar(10)"` // YYYY-MM-DD
	StartedAt time.Time
}
