package middleware

import (
	"strings"

	"petbox/internal/services"

	"github.com/gofiber/fiber/v2"
)

// buyerKey is the fiber.Ctx locals key the resolved buyer id is stored under.
const buyerKey = "buyer_id"

// BuyerID returns the buyer id resolved for the request, or empty for a
// guest.
func BuyerID(c *fiber.Ctx) string {
	if id, ok := c.Locals(buyerKey).(string); ok {
		return id
	}
	return ""
}

// ResolveBuyer is a best-effort identity middleware: a valid bearer token
// attaches the buyer id to the request, anything else (missing, malformed,
// expired) degrades to the guest flow instead of rejecting the request.
func ResolveBuyer(identity *services.IdentityService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader != "" {
			// Expected format: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				if buyerID, ok := identity.ResolveBuyer(parts[1]); ok {
					c.Locals(buyerKey, buyerID)
				}
			}
		}
		return c.Next()
	}
}

// AuthRequired rejects requests that did not resolve to a buyer. It must run
// after ResolveBuyer.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if BuyerID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "A valid bearer token is required",
			})
		}
		return c.Next()
	}
}
