package models

import "gorm.io/gorm"

// Pet is the animal a box is tailored for. Guest checkouts create pets on the
// fly from a free-form descriptor; those rows have an empty BuyerID.
type Pet struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerID    string `json:"buyer_id,omitempty" gorm:"index;type:varchar(36)"`
	Name       string `json:"name" validate:"required,max=100"`
	Species    string `json:"species" validate:"omitempty,max=50"`
	Breed      string `json:"breed" validate:"omitempty,max=100"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Address is a stored address-book entry for a registered buyer. Orders never
// reference it live; they embed an AddressSnapshot copy instead.
type Address struct {
	ID            string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerID       string `json:"buyer_id" gorm:"index;type:varchar(36)"`
	RecipientName string `json:"recipient_name"`
	Street        string `json:"street"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
	Phone         string `json:"phone"`
	gorm.Model
}

// Snapshot freezes the address into the form orders embed.
func (a *Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		RecipientName: a.RecipientName,
		Street:        a.Street,
		City:          a.City,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
		Phone:         a.Phone,
	}
}
