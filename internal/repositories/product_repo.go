package repositories

import (
	"petbox/internal/models"
)

// ProductRepository is the inventory/catalog accessor the order pipeline
// depends on.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	// DecrementStock atomically subtracts qty from the product's stock.
	// It fails with ErrInsufficientStock when that would drive it negative.
	DecrementStock(id string, qty int) error
}
