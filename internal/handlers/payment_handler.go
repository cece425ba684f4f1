package handlers

import (
	"log"

	"petbox/internal/services"
	"petbox/pkg/gateway"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler receives the gateway's asynchronous callback.
type PaymentHandler struct {
	reconciler *services.ReconcilerService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(reconciler *services.ReconcilerService) *PaymentHandler {
	return &PaymentHandler{
		reconciler: reconciler,
	}
}

// RegisterRoutes registers the payment callback routes with the Fiber app.
// The provider delivers results either by redirecting the buyer's browser
// (GET) or by server-to-server notification (POST).
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/payments/callback", h.HandleCallback)
	router.Post("/payments/callback", h.HandleCallback)
}

// HandleCallback reconciles one gateway result. The endpoint always answers
// 200 so the provider stops retrying; the body carries the true outcome for
// the buyer's browser.
func (h *PaymentHandler) HandleCallback(c *fiber.Ctx) error {
	payload := gateway.CallbackPayload{
		ResultCode:    c.Query("ResultCode", c.FormValue("ResultCode")),
		MerchantRef:   c.Query("MerchantRef", c.FormValue("MerchantRef")),
		ResultMessage: c.Query("ResultMessage", c.FormValue("ResultMessage")),
	}

	result, err := h.reconciler.Reconcile(payload)
	if err != nil {
		log.Printf("Reconciliation error for ref %s: %v", payload.MerchantRef, err)
		if result != nil {
			// A hazard still answers 200: retrying the callback cannot
			// help, a human has been alerted.
			return c.Status(fiber.StatusOK).JSON(result)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "error",
			"reason": "reconciliation failed, support has been notified",
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
