package services

import (
	"fmt"

	"petbox/internal/models"
	"petbox/internal/repositories"
)

// SubscriptionService governs the subscription lifecycle outside of order
// materialization: buyer-initiated cancellation and listing.
type SubscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(subscriptionRepo repositories.SubscriptionRepository) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
	}
}

// GetForBuyer lists a buyer's subscriptions.
func (s *SubscriptionService) GetForBuyer(buyerID string) ([]models.Subscription, error) {
	return s.subscriptionRepo.GetForBuyer(buyerID)
}

// Cancel moves an ACTIVE subscription to CANCELLED. Only the owning buyer
// may cancel, a reason is required, and a failed check leaves the
// subscription untouched.
func (s *SubscriptionService) Cancel(buyerID, subscriptionID, reason string) error {
	if reason == "" {
		return fmt.Errorf("a cancellation reason is required: %w", ErrValidation)
	}

	sub, err := s.subscriptionRepo.GetByID(subscriptionID)
	if err != nil {
		return err
	}
	if sub.BuyerID == "" || sub.BuyerID != buyerID {
		return fmt.Errorf("subscription %s does not belong to buyer %s: %w", subscriptionID, buyerID, ErrConflict)
	}
	if !sub.Status.CanTransitionTo(models.SubscriptionCancelled) {
		return fmt.Errorf("subscription %s is %s, only ACTIVE subscriptions can be cancelled: %w",
			subscriptionID, sub.Status, ErrConflict)
	}

	sub.Status = models.SubscriptionCancelled
	sub.CancellationReason = reason
	return s.subscriptionRepo.Update(sub)
}
