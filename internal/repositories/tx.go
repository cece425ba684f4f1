package repositories

import (
	"gorm.io/gorm"
)

// Repos bundles the repositories that participate in one atomic unit of work.
// Inside TxManager.Do every repository in the bundle runs on the same
// database transaction.
type Repos struct {
	Products      ProductRepository
	Orders        OrderRepository
	Subscriptions SubscriptionRepository
	Pets          PetRepository
	Addresses     AddressRepository
	Users         UserRepository
}

// TxManager runs a function against a transactional repository bundle.
// An error returned from fn rolls back every write made through the bundle.
type TxManager interface {
	Do(fn func(r *Repos) error) error
}

// GORMTxManager is a TxManager backed by gorm's transaction support.
type GORMTxManager struct {
	db *gorm.DB
}

// NewGORMTxManager creates a new instance of GORMTxManager.
func NewGORMTxManager(db *gorm.DB) *GORMTxManager {
	return &GORMTxManager{
		db: db,
	}
}

// Do opens a database transaction and hands fn a bundle of repositories bound
// to it. fn returning nil commits; any error rolls back.
func (m *GORMTxManager) Do(fn func(r *Repos) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Repos{
			Products:      NewGORMProductRepository(tx),
			Orders:        NewGORMOrderRepository(tx),
			Subscriptions: NewGORMSubscriptionRepository(tx),
			Pets:          NewGORMPetRepository(tx),
			Addresses:     NewGORMAddressRepository(tx),
			Users:         NewGORMUserRepository(tx),
		})
	})
}
