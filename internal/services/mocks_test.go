package services_test

import (
	"time"

	"petbox/internal/models"
	"petbox/internal/repositories"
	"petbox/pkg/gateway"

	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(id string, qty int) error {
	args := m.Called(id, qty)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForBuyer(buyerID string) ([]models.Order, error) {
	args := m.Called(buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

// MockSubscriptionRepository is a mock implementation of repositories.SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) GetByID(id string) (*models.Subscription, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) GetForBuyer(buyerID string) ([]models.Subscription, error) {
	args := m.Called(buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Create(sub *models.Subscription) error {
	args := m.Called(sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) Update(sub *models.Subscription) error {
	args := m.Called(sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) FindDue(now time.Time) ([]models.Subscription, error) {
	args := m.Called(now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) AdvancePeriod(id string, now time.Time) (bool, error) {
	args := m.Called(id, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepository) ClaimRun(runDate string, startedAt time.Time) error {
	args := m.Called(runDate, startedAt)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of repositories.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(session *models.PaymentSession) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(id string) (*models.PaymentSession, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentSession), args.Error(1)
}

func (m *MockSessionRepository) Claim(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepository) DeleteExpired(before time.Time) (int64, error) {
	args := m.Called(before)
	return args.Get(0).(int64), args.Error(1)
}

// MockDiscountRepository is a mock implementation of repositories.DiscountRepository
type MockDiscountRepository struct {
	mock.Mock
}

func (m *MockDiscountRepository) GetByDuration(durationMonths int) (*models.DiscountRule, error) {
	args := m.Called(durationMonths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DiscountRule), args.Error(1)
}

func (m *MockDiscountRepository) Seed() error {
	args := m.Called()
	return args.Error(0)
}

// MockPetRepository is a mock implementation of repositories.PetRepository
type MockPetRepository struct {
	mock.Mock
}

func (m *MockPetRepository) GetByID(id string) (*models.Pet, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pet), args.Error(1)
}

func (m *MockPetRepository) Create(pet *models.Pet) error {
	args := m.Called(pet)
	return args.Error(0)
}

// MockAddressRepository is a mock implementation of repositories.AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) GetForBuyer(buyerID, addressID string) (*models.Address, error) {
	args := m.Called(buyerID, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockGateway is a mock implementation of services.PaymentGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Initiate(amount float64, merchantRef string, card gateway.Card, successURL, failURL string) (string, error) {
	args := m.Called(amount, merchantRef, card, successURL, failURL)
	return args.String(0), args.Error(1)
}

// MockNotifier is a mock implementation of services.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PublishOrderConfirmation(buyerEmail, orderID string, total float64) error {
	args := m.Called(buyerEmail, orderID, total)
	return args.Error(0)
}

func (m *MockNotifier) PublishAdminOrderAlert(orderID string, total float64) error {
	args := m.Called(orderID, total)
	return args.Error(0)
}

func (m *MockNotifier) PublishReconciliationHazard(sessionID, reason string) error {
	args := m.Called(sessionID, reason)
	return args.Error(0)
}

// fakeTxManager runs the unit of work directly against the supplied mocks,
// with no real transaction underneath; rollback behavior is asserted through
// error propagation.
type fakeTxManager struct {
	repos *repositories.Repos
}

func (f *fakeTxManager) Do(fn func(r *repositories.Repos) error) error {
	return fn(f.repos)
}

// newTestRepos wires a full mock bundle and a tx manager around it.
func newTestRepos() (*repositories.Repos, *fakeTxManager) {
	repos := &repositories.Repos{
		Products:      &MockProductRepository{},
		Orders:        &MockOrderRepository{},
		Subscriptions: &MockSubscriptionRepository{},
		Pets:          &MockPetRepository{},
		Addresses:     &MockAddressRepository{},
		Users:         &MockUserRepository{},
	}
	return repos, &fakeTxManager{repos: repos}
}
