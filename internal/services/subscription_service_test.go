package services_test

import (
	"testing"

	"petbox/internal/models"
	"petbox/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSubscriptionService_Cancel_Success(t *testing.T) {
	subs := new(MockSubscriptionRepository)
	service := services.NewSubscriptionService(subs)

	subs.On("GetByID", "sub-1").Return(&models.Subscription{
		ID: "sub-1", BuyerID: "buyer-1", Status: models.SubscriptionActive,
	}, nil).Once()
	subs.On("Update", mock.MatchedBy(func(s *models.Subscription) bool {
		return s.ID == "sub-1" &&
			s.Status == models.SubscriptionCancelled &&
			s.CancellationReason == "moving abroad"
	})).Return(nil).Once()

	err := service.Cancel("buyer-1", "sub-1", "moving abroad")

	assert.NoError(t, err)
	subs.AssertExpectations(t)
}

func TestSubscriptionService_Cancel_ReasonRequired(t *testing.T) {
	subs := new(MockSubscriptionRepository)
	service := services.NewSubscriptionService(subs)

	err := service.Cancel("buyer-1", "sub-1", "")

	assert.Error(t, err)
	assert.ErrorIs(t, err, services.ErrValidation)
	subs.AssertNotCalled(t, "Update", mock.Anything)
}

func TestSubscriptionService_Cancel_ForeignSubscriptionRejected(t *testing.T) {
	subs := new(MockSubscriptionRepository)
	service := services.NewSubscriptionService(subs)

	subs.On("GetByID", "sub-1").Return(&models.Subscription{
		ID: "sub-1", BuyerID: "someone-else", Status: models.SubscriptionActive,
	}, nil).Once()

	err := service.Cancel("buyer-1", "sub-1", "not mine")

	assert.Error(t, err)
	assert.ErrorIs(t, err, services.ErrConflict)
	subs.AssertNotCalled(t, "Update", mock.Anything)
}

func TestSubscriptionService_Cancel_NonActiveRejected(t *testing.T) {
	subs := new(MockSubscriptionRepository)
	service := services.NewSubscriptionService(subs)

	for _, status := range []models.SubscriptionStatus{
		models.SubscriptionCancelled,
		models.SubscriptionCompleted,
		models.SubscriptionUpgraded,
	} {
		subs.On("GetByID", "sub-1").Return(&models.Subscription{
			ID: "sub-1", BuyerID: "buyer-1", Status: status,
		}, nil).Once()

		err := service.Cancel("buyer-1", "sub-1", "done with it")

		assert.Error(t, err, "status %s", status)
		assert.ErrorIs(t, err, services.ErrConflict)
	}
	subs.AssertNotCalled(t, "Update", mock.Anything)
}

func TestSubscriptionService_GetForBuyer(t *testing.T) {
	subs := new(MockSubscriptionRepository)
	service := services.NewSubscriptionService(subs)

	expected := []models.Subscription{
		{ID: "sub-1", BuyerID: "buyer-1", Status: models.SubscriptionActive},
		{ID: "sub-2", BuyerID: "buyer-1", Status: models.SubscriptionCompleted},
	}
	subs.On("GetForBuyer", "buyer-1").Return(expected, nil).Once()

	got, err := service.GetForBuyer("buyer-1")

	assert.NoError(t, err)
	assert.Equal(t, expected, got)
}
