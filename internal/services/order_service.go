package services

import (
	"errors"
	"fmt"
	"time"

	"petbox/internal/models"
	"petbox/internal/repositories"
)

// OrderService is the order transaction manager: it materializes an order
// from a checkout payload as one atomic unit across inventory, order and
// subscription writes. Any failure rolls back everything written in the call.
type OrderService struct {
	tx       repositories.TxManager
	discount *DiscountService
}

// NewOrderService creates a new OrderService.
func NewOrderService(tx repositories.TxManager, discount *DiscountService) *OrderService {
	return &OrderService{
		tx:       tx,
		discount: discount,
	}
}

// CreateOrder materializes an order for the given buyer (empty buyerID means
// guest). paymentReference tags how the order is being paid, typically the
// gateway merchant reference. The returned order is persisted with status
// PENDING; the reconciler promotes it to PAID once the gateway confirms.
func (s *OrderService) CreateOrder(buyerID string, cart models.CartPayload, paymentReference string) (*models.Order, error) {
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("cart has no items: %w", ErrValidation)
	}

	var order *models.Order
	err := s.tx.Do(func(r *repositories.Repos) error {
		shipping, err := s.resolveShipping(r, buyerID, cart)
		if err != nil {
			return err
		}

		now := time.Now()
		var items []models.OrderItem
		var total float64

		for _, line := range cart.Items {
			product, err := r.Products.GetByID(line.ProductID)
			if err != nil {
				return err
			}

			petID, err := s.resolvePet(r, buyerID, line)
			if err != nil {
				return err
			}

			subID, err := s.resolveSubscription(r, buyerID, petID, line, now)
			if err != nil {
				return err
			}

			if err := r.Products.DecrementStock(line.ProductID, line.Quantity); err != nil {
				return err
			}

			// The authoritative price is recomputed here with the same
			// calculator checkout quoting used; the client never sets it.
			quote, err := s.discount.CalculatePrice(product.Price, line.DurationMonths)
			if err != nil {
				return err
			}

			items = append(items, models.OrderItem{
				ProductID:           line.ProductID,
				Quantity:            line.Quantity,
				PriceAtPurchase:     quote.FinalPrice,
				ProductNameSnapshot: product.Name,
				DurationMonths:      line.DurationMonths,
				PetID:               petID,
				SubscriptionID:      subID,
			})
			total += quote.FinalPrice * float64(line.Quantity)
		}

		order = &models.Order{
			BuyerID:          buyerID,
			Items:            items,
			TotalPrice:       total,
			Status:           models.OrderStatusPending,
			PaymentReference: paymentReference,
			ShippingAddress:  shipping,
		}
		return r.Orders.Create(order)
	})
	if err != nil {
		order = nil
		return nil, fmt.Errorf("order creation failed: %w", err)
	}
	return order, nil
}

// UpdateStatus applies a status change, admin overrides included, constrained
// to the legal-transition table.
func (s *OrderService) UpdateStatus(id string, next models.OrderStatus) error {
	return s.tx.Do(func(r *repositories.Repos) error {
		order, err := r.Orders.GetByID(id)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(next) {
			return fmt.Errorf("order %s cannot move from %s to %s: %w",
				id, order.Status, next, ErrConflict)
		}
		return r.Orders.UpdateStatus(id, next)
	})
}

// GetByID retrieves a single order.
func (s *OrderService) GetByID(id string) (*models.Order, error) {
	var order *models.Order
	err := s.tx.Do(func(r *repositories.Repos) error {
		var e error
		order, e = r.Orders.GetByID(id)
		return e
	})
	return order, err
}

// resolveShipping builds the frozen address snapshot. Priority: stored
// address (phone and email backfilled from the buyer profile), then supplied
// guest-style contact. With no usable source at all the checkout is rejected
// rather than persisted with a placeholder.
func (s *OrderService) resolveShipping(r *repositories.Repos, buyerID string, cart models.CartPayload) (models.AddressSnapshot, error) {
	if buyerID != "" && cart.AddressID != "" {
		address, err := r.Addresses.GetForBuyer(buyerID, cart.AddressID)
		if err == nil {
			snapshot := address.Snapshot()
			if user, uerr := r.Users.GetByID(buyerID); uerr == nil {
				if snapshot.Phone == "" {
					snapshot.Phone = user.Phone
				}
				snapshot.Email = user.Email
			}
			return snapshot, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return models.AddressSnapshot{}, err
		}
		// Stored address is gone; fall through to the supplied contact.
	}

	if c := cart.GuestContact; c != nil {
		return models.AddressSnapshot{
			RecipientName: c.RecipientName,
			Street:        c.Street,
			City:          c.City,
			PostalCode:    c.PostalCode,
			Country:       c.Country,
			Phone:         c.Phone,
			Email:         c.Email,
		}, nil
	}

	return models.AddressSnapshot{}, fmt.Errorf("no shipping address or contact supplied: %w", ErrValidation)
}

// resolvePet returns the pet id for a cart line: an existing pet (which must
// belong to the buyer when one is known), a pet created on the fly from a
// guest descriptor, or none.
func (s *OrderService) resolvePet(r *repositories.Repos, buyerID string, line models.CartItem) (string, error) {
	if line.PetID != "" {
		pet, err := r.Pets.GetByID(line.PetID)
		if err != nil {
			return "", err
		}
		if buyerID != "" && pet.BuyerID != "" && pet.BuyerID != buyerID {
			return "", fmt.Errorf("pet %s does not belong to buyer %s: %w", line.PetID, buyerID, ErrConflict)
		}
		return pet.ID, nil
	}

	if line.GuestPet != nil {
		pet := &models.Pet{
			BuyerID: buyerID,
			Name:    line.GuestPet.Name,
			Species: line.GuestPet.Species,
			Breed:   line.GuestPet.Breed,
		}
		if err := r.Pets.Create(pet); err != nil {
			return "", err
		}
		return pet.ID, nil
	}

	return "", nil
}

// resolveSubscription applies the line's subscription decision and returns
// the id of the subscription the order item ends up attached to, if any.
func (s *OrderService) resolveSubscription(r *repositories.Repos, buyerID, petID string, line models.CartItem, now time.Time) (string, error) {
	switch {
	case line.SubscriptionID != "":
		return s.renewSubscription(r, buyerID, petID, line, now)
	case line.UpgradeFromSubscriptionID != "":
		return s.upgradeSubscription(r, buyerID, petID, line, now)
	case line.DurationMonths > 1:
		sub := s.newSubscription(buyerID, petID, line, now)
		if err := r.Subscriptions.Create(sub); err != nil {
			return "", err
		}
		return sub.ID, nil
	default:
		// One-off purchase, no subscription.
		return "", nil
	}
}

// renewSubscription extends an existing subscription by the line's duration.
// A completed or cancelled subscription is never revived; the renewal becomes
// a brand-new subscription instead.
func (s *OrderService) renewSubscription(r *repositories.Repos, buyerID, petID string, line models.CartItem, now time.Time) (string, error) {
	sub, err := r.Subscriptions.GetByID(line.SubscriptionID)
	if err != nil {
		return "", err
	}
	if buyerID != "" && sub.BuyerID != "" && sub.BuyerID != buyerID {
		return "", fmt.Errorf("subscription %s does not belong to buyer %s: %w", sub.ID, buyerID, ErrConflict)
	}

	if sub.Status != models.SubscriptionActive {
		fresh := s.newSubscription(buyerID, petID, line, now)
		if fresh.PetID == "" {
			fresh.PetID = sub.PetID
		}
		if err := r.Subscriptions.Create(fresh); err != nil {
			return "", err
		}
		return fresh.ID, nil
	}

	sub.TotalMonths += line.DurationMonths
	sub.RemainingMonths += line.DurationMonths
	if err := r.Subscriptions.Update(sub); err != nil {
		return "", err
	}
	return sub.ID, nil
}

// upgradeSubscription freezes the old subscription as UPGRADED and creates a
// fresh one with the line's terms, carrying the pet over.
func (s *OrderService) upgradeSubscription(r *repositories.Repos, buyerID, petID string, line models.CartItem, now time.Time) (string, error) {
	old, err := r.Subscriptions.GetByID(line.UpgradeFromSubscriptionID)
	if err != nil {
		return "", err
	}
	if buyerID != "" && old.BuyerID != "" && old.BuyerID != buyerID {
		return "", fmt.Errorf("subscription %s does not belong to buyer %s: %w", old.ID, buyerID, ErrConflict)
	}
	if !old.Status.CanTransitionTo(models.SubscriptionUpgraded) {
		return "", fmt.Errorf("subscription %s is %s, only ACTIVE subscriptions can be upgraded: %w",
			old.ID, old.Status, ErrConflict)
	}

	old.Status = models.SubscriptionUpgraded
	if err := r.Subscriptions.Update(old); err != nil {
		return "", err
	}

	fresh := s.newSubscription(buyerID, petID, line, now)
	if fresh.PetID == "" {
		fresh.PetID = old.PetID
	}
	if err := r.Subscriptions.Create(fresh); err != nil {
		return "", err
	}
	return fresh.ID, nil
}

func (s *OrderService) newSubscription(buyerID, petID string, line models.CartItem, now time.Time) *models.Subscription {
	months := line.DurationMonths
	if months < 1 {
		months = 1
	}
	return &models.Subscription{
		BuyerID:          buyerID,
		PetID:            petID,
		ProductID:        line.ProductID,
		TotalMonths:      months,
		RemainingMonths:  months,
		StartDate:        now,
		NextDeliveryDate: now.AddDate(0, 1, 0),
		Status:           models.SubscriptionActive,
	}
}
