package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math"

	"petbox/internal/models"
	"petbox/internal/repositories"
	"petbox/pkg/gateway"

	"github.com/go-playground/validator/v10"
)

// PaymentGateway is the slice of the gateway client checkout needs.
type PaymentGateway interface {
	Initiate(amount float64, merchantRef string, card gateway.Card, successURL, failURL string) (string, error)
}

// CheckoutResult is returned to the buyer's client after a successful
// initiation: redirect the browser to ChallengeURL and wait for the callback.
type CheckoutResult struct {
	SessionID    string  `json:"session_id"`
	ChallengeURL string  `json:"challenge_url"`
	Total        float64 `json:"total"`
}

// CheckoutService turns a cart into a payment session and an initiated
// gateway payment. The order itself is only materialized later, when the
// gateway's callback confirms the charge.
type CheckoutService struct {
	sessionRepo repositories.SessionRepository
	productRepo repositories.ProductRepository
	discount    *DiscountService
	gw          PaymentGateway
	successURL  string
	failURL     string
	validate    *validator.Validate
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(
	sessionRepo repositories.SessionRepository,
	productRepo repositories.ProductRepository,
	discount *DiscountService,
	gw PaymentGateway,
	successURL, failURL string,
) *CheckoutService {
	return &CheckoutService{
		sessionRepo: sessionRepo,
		productRepo: productRepo,
		discount:    discount,
		gw:          gw,
		successURL:  successURL,
		failURL:     failURL,
		validate:    validator.New(),
	}
}

// Quote prices the cart server-side with the same calculator order
// materialization uses later.
func (s *CheckoutService) Quote(cart models.CartPayload) (float64, error) {
	var total float64
	for _, line := range cart.Items {
		product, err := s.productRepo.GetByID(line.ProductID)
		if err != nil {
			return 0, err
		}
		if product.Stock < line.Quantity {
			return 0, fmt.Errorf("product %s (requested: %d, available: %d): %w",
				product.Name, line.Quantity, product.Stock, repositories.ErrInsufficientStock)
		}
		quote, err := s.discount.CalculatePrice(product.Price, line.DurationMonths)
		if err != nil {
			return 0, err
		}
		total += quote.FinalPrice * float64(line.Quantity)
	}
	return total, nil
}

// Begin validates the cart, snapshots it into a single-use payment session
// and initiates the gateway payment with the session id as the merchant
// reference. The session exists before the gateway ever learns the
// reference, so the callback can always be matched.
func (s *CheckoutService) Begin(buyerID string, cart models.CartPayload) (*CheckoutResult, error) {
	if err := s.validate.Struct(cart); err != nil {
		return nil, fmt.Errorf("invalid checkout payload: %v: %w", err, ErrValidation)
	}
	if buyerID == "" && cart.GuestContact == nil {
		return nil, fmt.Errorf("guest checkout requires contact information: %w", ErrValidation)
	}
	if buyerID != "" && cart.AddressID == "" && cart.GuestContact == nil {
		return nil, fmt.Errorf("no shipping address selected and no contact supplied: %w", ErrValidation)
	}

	total, err := s.Quote(cart)
	if err != nil {
		return nil, err
	}

	// The client may echo the total it displayed; a material divergence
	// means the quote went stale (price edit, discount change) and the
	// buyer must re-confirm. The client value is never charged.
	if cart.QuotedTotal != 0 && math.Abs(cart.QuotedTotal-total) > 0.01 {
		return nil, fmt.Errorf("quoted total %.2f no longer matches current price %.2f: %w",
			cart.QuotedTotal, total, ErrValidation)
	}

	cart.ResolvedBuyerID = buyerID
	payload, err := json.Marshal(cart)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot cart: %w", err)
	}

	session := &models.PaymentSession{Payload: string(payload)}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	card := gateway.Card{
		Pan:    cart.Card.Pan,
		Expiry: cart.Card.Expiry,
		CVV:    cart.Card.CVV,
		Holder: cart.Card.Holder,
	}
	challengeURL, err := s.gw.Initiate(total, session.ID, card, s.successURL, s.failURL)
	if err != nil {
		// The buyer never saw a challenge page, so the session can go
		// straight away instead of waiting for the reaper.
		if _, claimErr := s.sessionRepo.Claim(session.ID); claimErr != nil {
			log.Printf("Failed to discard session %s after gateway error: %v", session.ID, claimErr)
		}
		return nil, fmt.Errorf("%v: %w", err, ErrGateway)
	}

	return &CheckoutResult{
		SessionID:    session.ID,
		ChallengeURL: challengeURL,
		Total:        total,
	}, nil
}
