package services

import (
	"encoding/json"
	"fmt"

	"petbox/internal/models"
	"petbox/pkg/rabbitmq"
)

// QueuePublisher is the slice of the broker client the shipping service
// publishes through.
type QueuePublisher interface {
	Publish(queue string, body []byte) error
}

// QueueShippingService hands shipments to the external carrier integration
// via the message broker. The carrier assigns tracking codes asynchronously,
// so the returned Shipment has none yet; a code is never invented here.
type QueueShippingService struct {
	publisher QueuePublisher
	provider  string
}

// NewQueueShippingService creates a new QueueShippingService.
func NewQueueShippingService(publisher QueuePublisher, provider string) *QueueShippingService {
	return &QueueShippingService{
		publisher: publisher,
		provider:  provider,
	}
}

// CreateShipment enqueues the shipment request. A publish failure surfaces
// as a retryable shipment error.
func (s *QueueShippingService) CreateShipment(order *models.Order) (*Shipment, error) {
	body, err := json.Marshal(map[string]interface{}{
		"type":     "shipment.requested",
		"order_id": order.ID,
		"address":  order.ShippingAddress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shipment request: %w", err)
	}
	if err := s.publisher.Publish(rabbitmq.ShippingQueue, body); err != nil {
		return nil, fmt.Errorf("could not dispatch shipment for order %s (%v): %w",
			order.ID, err, ErrShipmentRetryable)
	}
	return &Shipment{Provider: s.provider}, nil
}
