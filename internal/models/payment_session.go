package models

import "time"

// PaymentSession is the provisional "intent to order" record created right
// before the gateway call. Payload is an opaque JSON snapshot of the checkout
// (cart plus resolved buyer id); the session holds no foreign keys into
// orders or subscriptions. Sessions are single-use: the first reconciliation
// claims and deletes the row, so a replayed callback finds nothing.
type PaymentSession struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Payload   string    `json:"payload" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
