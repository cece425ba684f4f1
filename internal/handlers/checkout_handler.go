package handlers

import (
	"errors"
	"log"

	"petbox/internal/middleware"
	"petbox/internal/models"
	"petbox/internal/repositories"
	"petbox/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles HTTP requests for starting a checkout.
type CheckoutHandler struct {
	service *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
	}
}

// RegisterRoutes registers the checkout routes with the Fiber app.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
}

// HandleCheckout validates the cart, opens a payment session and returns the
// gateway challenge URL the client must redirect to. The structured error
// reasons let the client tell "out of stock" from "payment could not be
// started".
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var cart models.CartPayload
	if err := c.BodyParser(&cart); err != nil {
		log.Printf("Error parsing checkout body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	result, err := h.service.Begin(middleware.BuyerID(c), cart)
	if err != nil {
		log.Printf("Checkout failed: %v", err)
		switch {
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Checkout request is invalid",
				"reason":  "validation",
				"error":   err.Error(),
			})
		case errors.Is(err, repositories.ErrInsufficientStock):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "One or more items are out of stock",
				"reason":  "insufficient_stock",
				"error":   err.Error(),
			})
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "A referenced product no longer exists",
				"reason":  "not_found",
				"error":   err.Error(),
			})
		case errors.Is(err, services.ErrGateway):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"message": "Payment could not be started",
				"reason":  "gateway",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not start checkout",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}
