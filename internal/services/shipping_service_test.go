package services_test

import (
	"errors"
	"testing"

	"petbox/internal/models"
	"petbox/internal/services"
	"petbox/pkg/rabbitmq"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockQueuePublisher is a mock implementation of services.QueuePublisher
type MockQueuePublisher struct {
	mock.Mock
}

func (m *MockQueuePublisher) Publish(queue string, body []byte) error {
	args := m.Called(queue, body)
	return args.Error(0)
}

func TestQueueShippingService_CreateShipment(t *testing.T) {
	publisher := new(MockQueuePublisher)
	service := services.NewQueueShippingService(publisher, "postnl")

	var published []byte
	publisher.On("Publish", rabbitmq.ShippingQueue, mock.AnythingOfType("[]uint8")).
		Run(func(args mock.Arguments) {
			published = args.Get(1).([]byte)
		}).Return(nil).Once()

	order := &models.Order{
		ID:              "order-1",
		ShippingAddress: models.AddressSnapshot{RecipientName: "Jamie Guest", City: "Boxtown"},
	}

	shipment, err := service.CreateShipment(order)

	assert.NoError(t, err)
	assert.Equal(t, "postnl", shipment.Provider)
	// The carrier assigns tracking asynchronously; none is invented here.
	assert.Empty(t, shipment.TrackingCode)
	assert.Contains(t, string(published), `"order_id":"order-1"`)
	assert.Contains(t, string(published), "shipment.requested")
	publisher.AssertExpectations(t)
}

func TestQueueShippingService_CreateShipment_PublishFailureIsRetryable(t *testing.T) {
	publisher := new(MockQueuePublisher)
	service := services.NewQueueShippingService(publisher, "postnl")

	publisher.On("Publish", rabbitmq.ShippingQueue, mock.Anything).
		Return(errors.New("channel closed")).Once()

	shipment, err := service.CreateShipment(&models.Order{ID: "order-1"})

	assert.Error(t, err)
	assert.ErrorIs(t, err, services.ErrShipmentRetryable)
	assert.Nil(t, shipment)
}
