package repositories

import (
	"petbox/internal/models"
)

// PetRepository is the pet-profile accessor order creation depends on.
type PetRepository interface {
	GetByID(id string) (*models.Pet, error)
	Create(pet *models.Pet) error
}

// AddressRepository is the address-book accessor. Orders only ever read from
// it to build a snapshot.
type AddressRepository interface {
	// GetForBuyer returns the address only when it belongs to the buyer.
	GetForBuyer(buyerID, addressID string) (*models.Address, error)
}
