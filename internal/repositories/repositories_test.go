package repositories_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"petbox/internal/models"
	"petbox/internal/repositories"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{}, &models.Order{}, &models.OrderItem{},
		&models.Subscription{}, &models.FulfillmentRun{},
		&models.PaymentSession{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestProductRepository_DecrementStock(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMProductRepository(db)
	assert.NoError(t, repo.Create(&models.Product{ID: "p1", Name: "Test Box", Price: 10, Stock: 3}))

	assert.NoError(t, repo.DecrementStock("p1", 2))

	product, err := repo.GetByID("p1")
	assert.NoError(t, err)
	assert.Equal(t, 1, product.Stock)

	// A decrement past the remaining stock matches no rows.
	err = repo.DecrementStock("p1", 2)
	assert.ErrorIs(t, err, repositories.ErrInsufficientStock)

	product, _ = repo.GetByID("p1")
	assert.Equal(t, 1, product.Stock)

	err = repo.DecrementStock("no-such-product", 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestSessionRepository_ClaimIsSingleUse(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMSessionRepository(db)

	session := &models.PaymentSession{Payload: `{"items":[]}`}
	assert.NoError(t, repo.Create(session))
	assert.NotEmpty(t, session.ID)

	claimed, err := repo.Claim(session.ID)
	assert.NoError(t, err)
	assert.True(t, claimed)

	// The second claimant loses: the row is already gone.
	claimed, err = repo.Claim(session.ID)
	assert.NoError(t, err)
	assert.False(t, claimed)

	_, err = repo.GetByID(session.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMSessionRepository(db)

	now := time.Now()
	assert.NoError(t, repo.Create(&models.PaymentSession{ID: "old", Payload: "{}", CreatedAt: now.Add(-time.Hour)}))
	assert.NoError(t, repo.Create(&models.PaymentSession{ID: "fresh", Payload: "{}", CreatedAt: now}))

	reaped, err := repo.DeleteExpired(now.Add(-30 * time.Minute))
	assert.NoError(t, err)
	assert.Equal(t, int64(1), reaped)

	_, err = repo.GetByID("old")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.GetByID("fresh")
	assert.NoError(t, err)
}

func TestSubscriptionRepository_AdvancePeriod(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMSubscriptionRepository(db)

	now := time.Now()
	sub := &models.Subscription{
		BuyerID: "buyer-1", ProductID: "p1",
		TotalMonths: 3, RemainingMonths: 2,
		StartDate: now.AddDate(0, -1, 0), NextDeliveryDate: now.Add(-time.Hour),
		Status: models.SubscriptionActive,
	}
	assert.NoError(t, repo.Create(sub))

	advanced, err := repo.AdvancePeriod(sub.ID, now)
	assert.NoError(t, err)
	assert.True(t, advanced)

	got, err := repo.GetByID(sub.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, got.RemainingMonths)
	assert.Equal(t, models.SubscriptionActive, got.Status)
	assert.True(t, got.NextDeliveryDate.After(now))

	// The delivery date moved past now, so a re-run in the same period is
	// a no-op.
	advanced, err = repo.AdvancePeriod(sub.ID, now)
	assert.NoError(t, err)
	assert.False(t, advanced)

	got, _ = repo.GetByID(sub.ID)
	assert.Equal(t, 1, got.RemainingMonths)
}

func TestSubscriptionRepository_AdvancePeriod_LastPeriodCompletes(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMSubscriptionRepository(db)

	now := time.Now()
	sub := &models.Subscription{
		BuyerID: "buyer-1", ProductID: "p1",
		TotalMonths: 3, RemainingMonths: 1,
		NextDeliveryDate: now.Add(-time.Hour),
		Status:           models.SubscriptionActive,
	}
	assert.NoError(t, repo.Create(sub))

	advanced, err := repo.AdvancePeriod(sub.ID, now)
	assert.NoError(t, err)
	assert.True(t, advanced)

	got, _ := repo.GetByID(sub.ID)
	assert.Equal(t, 0, got.RemainingMonths)
	assert.Equal(t, models.SubscriptionCompleted, got.Status)

	// COMPLETED is terminal; no further advance touches the row.
	advanced, err = repo.AdvancePeriod(sub.ID, now.AddDate(0, 2, 0))
	assert.NoError(t, err)
	assert.False(t, advanced)
}

func TestSubscriptionRepository_FindDueExcludesNonActive(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMSubscriptionRepository(db)

	now := time.Now()
	past := now.Add(-time.Hour)
	for _, s := range []*models.Subscription{
		{ID: "due", BuyerID: "b", ProductID: "p", RemainingMonths: 2, NextDeliveryDate: past, Status: models.SubscriptionActive},
		{ID: "future", BuyerID: "b", ProductID: "p", RemainingMonths: 2, NextDeliveryDate: now.Add(time.Hour), Status: models.SubscriptionActive},
		{ID: "cancelled", BuyerID: "b", ProductID: "p", RemainingMonths: 2, NextDeliveryDate: past, Status: models.SubscriptionCancelled},
	} {
		assert.NoError(t, repo.Create(s))
	}

	due, err := repo.FindDue(now)
	assert.NoError(t, err)
	assert.Len(t, due, 1)
	assert.Equal(t, "due", due[0].ID)
}

func TestSubscriptionRepository_ClaimRun(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMSubscriptionRepository(db)

	now := time.Now()
	assert.NoError(t, repo.ClaimRun("2026-03-15", now))

	err := repo.ClaimRun("2026-03-15", now.Add(time.Minute))
	assert.ErrorIs(t, err, repositories.ErrRunAlreadyClaimed)

	// A different day is a different claim.
	assert.NoError(t, repo.ClaimRun("2026-03-16", now))
}

func TestOrderRepository_CreateAndLoadWithItems(t *testing.T) {
	db := openTestDB(t)
	repo := repositories.NewGORMOrderRepository(db)

	order := &models.Order{
		BuyerID:    "buyer-1",
		TotalPrice: 45.80,
		Status:     models.OrderStatusPending,
		Items: []models.OrderItem{
			{ProductID: "p1", Quantity: 2, PriceAtPurchase: 22.90, ProductNameSnapshot: "Cat Box"},
		},
		ShippingAddress: models.AddressSnapshot{RecipientName: "Sam Buyer", City: "Boxtown"},
	}
	assert.NoError(t, repo.Create(order))
	assert.NotEmpty(t, order.ID)

	got, err := repo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Len(t, got.Items, 1)
	assert.Equal(t, "Cat Box", got.Items[0].ProductNameSnapshot)
	assert.Equal(t, "Sam Buyer", got.ShippingAddress.RecipientName)

	assert.NoError(t, repo.UpdateStatus(order.ID, models.OrderStatusPaid))
	got, _ = repo.GetByID(order.ID)
	assert.Equal(t, models.OrderStatusPaid, got.Status)

	err = repo.UpdateStatus("no-such-order", models.OrderStatusPaid)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestTxManager_RollbackOnError(t *testing.T) {
	db := openTestDB(t)
	tx := repositories.NewGORMTxManager(db)

	productRepo := repositories.NewGORMProductRepository(db)
	assert.NoError(t, productRepo.Create(&models.Product{ID: "p1", Name: "Test Box", Price: 10, Stock: 5}))

	err := tx.Do(func(r *repositories.Repos) error {
		if err := r.Products.DecrementStock("p1", 2); err != nil {
			return err
		}
		return fmt.Errorf("simulated downstream failure")
	})
	assert.Error(t, err)

	// The decrement rolled back with the transaction.
	product, err := productRepo.GetByID("p1")
	assert.NoError(t, err)
	assert.Equal(t, 5, product.Stock)
}
