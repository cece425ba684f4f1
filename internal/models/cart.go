package models

// GuestPetDescriptor is the free-form pet a guest supplies instead of an
// address-book pet id.
type GuestPetDescriptor struct {
	Name    string `json:"name" validate:"required,max=100"`
	Species string `json:"species" validate:"omitempty,max=50"`
	Breed   string `json:"breed" validate:"omitempty,max=100"`
}

// CartItem is one line of a checkout request. Duration selects the
// subscription length in months; 0 or 1 is a one-off purchase. SubscriptionID
// renews an existing subscription, UpgradeFromSubscriptionID replaces one.
type CartItem struct {
	ProductID                 string              `json:"product_id" validate:"required"`
	Quantity                  int                 `json:"quantity" validate:"required,gt=0"`
	DurationMonths            int                 `json:"duration_months" validate:"gte=0,lte=24"`
	SubscriptionID            string              `json:"subscription_id,omitempty"`
	UpgradeFromSubscriptionID string              `json:"upgrade_from_subscription_id,omitempty"`
	PetID                     string              `json:"pet_id,omitempty"`
	GuestPet                  *GuestPetDescriptor `json:"guest_pet,omitempty"`
}

// GuestContact carries shipping/contact details for buyers without a stored
// address (or without an account at all).
type GuestContact struct {
	RecipientName string `json:"recipient_name" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Street        string `json:"street" validate:"required,max=255"`
	City          string `json:"city" validate:"required,max=100"`
	PostalCode    string `json:"postal_code" validate:"required,max=20"`
	Country       string `json:"country" validate:"required,max=100"`
	Phone         string `json:"phone" validate:"omitempty,max=50"`
}

// CardDetails is forwarded to the gateway and never persisted outside the
// payment session snapshot.
type CardDetails struct {
	Pan    string `json:"pan" validate:"required,min=12,max=19"`
	Expiry string `json:"expiry" validate:"required,len=4"` // MMYY
	CVV    string `json:"cvv" validate:"required,min=3,max=4"`
	Holder string `json:"holder" validate:"required,max=100"`
}

// CartPayload is the client-supplied checkout request. The client may send a
// quoted total for divergence detection, but the authoritative charge is
// always recomputed server-side.
type CartPayload struct {
	Items        []CartItem    `json:"items" validate:"required,min=1,dive"`
	AddressID    string        `json:"address_id,omitempty"`
	GuestContact *GuestContact `json:"guest_contact,omitempty"`
	Card         CardDetails   `json:"card" validate:"required"`
	QuotedTotal  float64       `json:"quoted_total,omitempty"`

	// ResolvedBuyerID is filled server-side before the payload is
	// snapshotted into a payment session. Anything the client sends here
	// is overwritten.
	ResolvedBuyerID string `json:"resolved_buyer_id,omitempty"`
}
