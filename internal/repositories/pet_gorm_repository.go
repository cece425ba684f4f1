package repositories

import (
	"fmt"

	"petbox/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMPetRepository is a GORM implementation of PetRepository.
type GORMPetRepository struct {
	db *gorm.DB
}

// NewGORMPetRepository creates a new instance of GORMPetRepository.
func NewGORMPetRepository(db *gorm.DB) *GORMPetRepository {
	return &GORMPetRepository{
		db: db,
	}
}

// GetByID retrieves a pet by its ID.
func (r *GORMPetRepository) GetByID(id string) (*models.Pet, error) {
	var pet models.Pet
	if err := r.db.First(&pet, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("pet %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pet by ID %s: %w", id, err)
	}
	return &pet, nil
}

// Create creates a new pet record.
func (r *GORMPetRepository) Create(pet *models.Pet) error {
	if pet.ID == "" {
		pet.ID = uuid.New().String()
	}
	if err := r.db.Create(pet).Error; err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}
	return nil
}

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{
		db: db,
	}
}

// GetForBuyer retrieves an address, scoped to its owning buyer.
func (r *GORMAddressRepository) GetForBuyer(buyerID, addressID string) (*models.Address, error) {
	var address models.Address
	if err := r.db.First(&address, "id = ? AND buyer_id = ?", addressID, buyerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("address %s for buyer %s: %w", addressID, buyerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get address %s: %w", addressID, err)
	}
	return &address, nil
}
