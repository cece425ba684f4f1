package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

// orderTransitions is the legal-transition table. Admin status overrides are
// constrained to it as well; there is no free-form status write.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusFailed, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusRefunded},
	OrderStatusShipped: {OrderStatusDelivered},
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem is a single line of an order. Price and product name are frozen
// point-in-time copies; later catalog edits never alter them.
type OrderItem struct {
	ID                  string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID             string  `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID           string  `json:"product_id" gorm:"type:varchar(36)"`
	Quantity            int     `json:"quantity"`
	PriceAtPurchase     float64 `json:"price_at_purchase"`
	ProductNameSnapshot string  `json:"product_name_snapshot"`
	DurationMonths      int     `json:"duration_months"`
	PetID               string  `json:"pet_id,omitempty" gorm:"type:varchar(36)"`
	SubscriptionID      string  `json:"subscription_id,omitempty" gorm:"type:varchar(36)"`
}

// AddressSnapshot is the frozen shipping address embedded in an order.
// It is a copy, never a live reference into the address book.
type AddressSnapshot struct {
	RecipientName string `json:"recipient_name"`
	Street        string `json:"street"`
	City          string `json:"city"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
}

// Order is a customer order. BuyerID is empty for guest orders, which are
// identified only by the embedded shipping snapshot.
type Order struct {
	ID               string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerID          string      `json:"buyer_id,omitempty" gorm:"index;type:varchar(36)"`
	Items            []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	TotalPrice       float64     `json:"total_price"`
	Status           OrderStatus `json:"status" gorm:"type:varchar(20)"`
	PaymentReference string      `json:"payment_reference" gorm:"type:varchar(100)"`

	// Shipping address snapshot, flattened into the orders table.
	ShippingAddress AddressSnapshot `json:"shipping_address" gorm:"embedded;embeddedPrefix:ship_"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
