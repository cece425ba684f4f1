package repositories

import "petbox/internal/models"

// UserRepository defines the interface for buyer profile access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
}
