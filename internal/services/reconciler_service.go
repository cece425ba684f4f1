package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"petbox/internal/models"
	"petbox/internal/repositories"
	"petbox/pkg/gateway"
)

// Notifier is the notification collaborator. Publish failures are logged by
// callers and never fail the enclosing operation, with one exception: a
// reconciliation hazard that cannot be published is still returned as an
// error so it cannot vanish.
type Notifier interface {
	PublishOrderConfirmation(buyerEmail, orderID string, total float64) error
	PublishAdminOrderAlert(orderID string, total float64) error
	PublishReconciliationHazard(sessionID, reason string) error
}

// Shipment is the shipping collaborator's confirmation. An empty tracking
// code means the shipment request was accepted but not yet assigned one;
// codes are never fabricated.
type Shipment struct {
	TrackingCode string `json:"tracking_code"`
	Provider     string `json:"provider"`
}

// ShippingService is the shipping collaborator. Failures are retryable and
// surface as ErrShipmentRetryable.
type ShippingService interface {
	CreateShipment(order *models.Order) (*Shipment, error)
}

// ReconcileStatus classifies a callback's outcome.
type ReconcileStatus string

const (
	ReconcileSuccess ReconcileStatus = "success"
	ReconcileFailed  ReconcileStatus = "failed"
	ReconcileInvalid ReconcileStatus = "invalid"
	ReconcileHazard  ReconcileStatus = "hazard"
)

// ReconciliationResult is what the callback endpoint reports back to the
// buyer's browser (and what tests assert on).
type ReconciliationResult struct {
	Status  ReconcileStatus `json:"status"`
	OrderID string          `json:"order_id,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	// ShipmentPending is true when the order is paid but the shipping
	// collaborator failed; the shipment must be retried.
	ShipmentPending bool `json:"shipment_pending,omitempty"`
}

// OrderCreator is the slice of the order transaction manager the reconciler
// drives.
type OrderCreator interface {
	CreateOrder(buyerID string, cart models.CartPayload, paymentReference string) (*models.Order, error)
	UpdateStatus(id string, next models.OrderStatus) error
}

// ReconcilerService matches asynchronous gateway results back to their
// payment sessions and drives order materialization.
type ReconcilerService struct {
	sessionRepo repositories.SessionRepository
	orders      OrderCreator
	notifier    Notifier
	shipping    ShippingService
}

// NewReconcilerService creates a new ReconcilerService. notifier and
// shipping may be nil in tests.
func NewReconcilerService(
	sessionRepo repositories.SessionRepository,
	orders OrderCreator,
	notifier Notifier,
	shipping ShippingService,
) *ReconcilerService {
	return &ReconcilerService{
		sessionRepo: sessionRepo,
		orders:      orders,
		notifier:    notifier,
		shipping:    shipping,
	}
}

// Reconcile resolves one gateway callback. The session claim (a conditional
// delete) is the idempotency boundary: whichever callback claims the row
// first is the only one that proceeds, so a replayed callback resolves to
// invalid rather than a duplicate order.
func (s *ReconcilerService) Reconcile(cb gateway.CallbackPayload) (*ReconciliationResult, error) {
	session, err := s.sessionRepo.GetByID(cb.MerchantRef)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &ReconciliationResult{Status: ReconcileInvalid, Reason: "unknown or already consumed session"}, nil
		}
		return nil, err
	}

	if !cb.Approved() {
		if _, claimErr := s.sessionRepo.Claim(session.ID); claimErr != nil {
			return nil, claimErr
		}
		reason := cb.ResultMessage
		if reason == "" {
			reason = fmt.Sprintf("payment declined (code %s)", cb.ResultCode)
		}
		return &ReconciliationResult{Status: ReconcileFailed, Reason: reason}, nil
	}

	claimed, err := s.sessionRepo.Claim(session.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return &ReconciliationResult{Status: ReconcileInvalid, Reason: "session already consumed"}, nil
	}

	var cart models.CartPayload
	if err := json.Unmarshal([]byte(session.Payload), &cart); err != nil {
		return s.hazard(session.ID, fmt.Sprintf("corrupt session payload: %v", err))
	}

	order, err := s.orders.CreateOrder(cart.ResolvedBuyerID, cart, "card:"+session.ID)
	if err != nil {
		// The gateway captured money but no order exists. This is the one
		// failure that must be escalated, never just logged.
		return s.hazard(session.ID, err.Error())
	}

	if err := s.orders.UpdateStatus(order.ID, models.OrderStatusPaid); err != nil {
		return s.hazard(session.ID, fmt.Sprintf("order %s created but could not be marked paid: %v", order.ID, err))
	}

	result := &ReconciliationResult{Status: ReconcileSuccess, OrderID: order.ID}

	if s.notifier != nil {
		if err := s.notifier.PublishOrderConfirmation(order.ShippingAddress.Email, order.ID, order.TotalPrice); err != nil {
			log.Printf("Warning: failed to publish order confirmation for order %s: %v", order.ID, err)
		}
		if err := s.notifier.PublishAdminOrderAlert(order.ID, order.TotalPrice); err != nil {
			log.Printf("Warning: failed to publish admin alert for order %s: %v", order.ID, err)
		}
	}

	if s.shipping != nil {
		if _, err := s.shipping.CreateShipment(order); err != nil {
			log.Printf("Shipment creation for order %s failed, needs retry: %v", order.ID, err)
			result.ShipmentPending = true
		}
	}

	return result, nil
}

// hazard escalates a captured payment with no matching order: an alert goes
// to the admin queue and the caller gets a distinct hazard result. Refunds
// stay a manual operation driven by the alert.
func (s *ReconcilerService) hazard(sessionID, reason string) (*ReconciliationResult, error) {
	log.Printf("RECONCILIATION HAZARD for session %s: %s", sessionID, reason)
	if s.notifier != nil {
		if err := s.notifier.PublishReconciliationHazard(sessionID, reason); err != nil {
			return &ReconciliationResult{Status: ReconcileHazard, Reason: reason},
				fmt.Errorf("hazard alert publish failed (%v) for session %s: %w", err, sessionID, ErrReconciliationHazard)
		}
	}
	return &ReconciliationResult{Status: ReconcileHazard, Reason: reason},
		fmt.Errorf("session %s: %s: %w", sessionID, reason, ErrReconciliationHazard)
}
