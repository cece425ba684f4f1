package repositories

import (
	"petbox/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// created once and mutated only through status transitions; they are never
// deleted.
type OrderRepository interface {
	GetByID(id string) (*models.Order, error)
	GetForBuyer(buyerID string) ([]models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status models.OrderStatus) error
}
