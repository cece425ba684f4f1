package repositories

import (
	"fmt"
	"time"

	"petbox/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMSessionRepository is a GORM implementation of SessionRepository.
type GORMSessionRepository struct {
	db *gorm.DB
}

// NewGORMSessionRepository creates a new instance of GORMSessionRepository.
func NewGORMSessionRepository(db *gorm.DB) *GORMSessionRepository {
	return &GORMSessionRepository{
		db: db,
	}
}

// Create persists a new payment session.
func (r *GORMSessionRepository) Create(session *models.PaymentSession) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("failed to create payment session: %w", err)
	}
	return nil
}

// GetByID retrieves a payment session by its ID.
func (r *GORMSessionRepository) GetByID(id string) (*models.PaymentSession, error) {
	var session models.PaymentSession
	if err := r.db.First(&session, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("payment session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get payment session %s: %w", id, err)
	}
	return &session, nil
}

// Claim deletes the session row. RowsAffected decides the race: exactly one
// concurrent caller sees claimed == true.
func (r *GORMSessionRepository) Claim(id string) (bool, error) {
	res := r.db.Delete(&models.PaymentSession{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim payment session %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// DeleteExpired reaps sessions abandoned before the cutoff.
func (r *GORMSessionRepository) DeleteExpired(before time.Time) (int64, error) {
	res := r.db.Delete(&models.PaymentSession{}, "created_at < ?", before)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete expired payment sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
