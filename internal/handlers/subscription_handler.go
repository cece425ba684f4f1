package handlers

import (
	"errors"
	"log"

	"petbox/internal/middleware"
	"petbox/internal/repositories"
	"petbox/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SubscriptionHandler handles HTTP requests for subscriptions.
type SubscriptionHandler struct {
	service *services.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(service *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
	}
}

// RegisterRoutes registers the subscription routes with the Fiber app.
// All of them require an authenticated buyer.
func (h *SubscriptionHandler) RegisterRoutes(router fiber.Router) {
	subs := router.Group("/subscriptions", middleware.AuthRequired())
	subs.Get("/", h.HandleGetSubscriptions)
	subs.Post("/:id/cancel", h.HandleCancel)
}

// HandleGetSubscriptions lists the authenticated buyer's subscriptions.
func (h *SubscriptionHandler) HandleGetSubscriptions(c *fiber.Ctx) error {
	subs, err := h.service.GetForBuyer(middleware.BuyerID(c))
	if err != nil {
		log.Printf("Error getting subscriptions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve subscriptions",
			"error":   err.Error(),
		})
	}
	return c.JSON(subs)
}

// HandleCancel cancels an ACTIVE subscription owned by the caller.
func (h *SubscriptionHandler) HandleCancel(c *fiber.Ctx) error {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	err := h.service.Cancel(middleware.BuyerID(c), c.Params("id"), body.Reason)
	if err != nil {
		log.Printf("Error cancelling subscription %s: %v", c.Params("id"), err)
		switch {
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "A cancellation reason is required",
			})
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Subscription not found",
			})
		case errors.Is(err, services.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Subscription cannot be cancelled",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not cancel subscription",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Subscription cancelled",
	})
}
