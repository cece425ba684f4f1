package repositories

import (
	"time"

	"petbox/internal/models"
)

// SessionRepository stores provisional payment sessions. Sessions are
// single-use: Claim deletes the row and reports whether this caller won, so
// only one reconciliation attempt can ever proceed per session.
type SessionRepository interface {
	Create(session *models.PaymentSession) error
	GetByID(id string) (*models.PaymentSession, error)
	// Claim removes the session. claimed is false when the row was already
	// gone, which a caller must treat as a replayed or duplicate callback.
	Claim(id string) (claimed bool, err error)
	// DeleteExpired removes sessions created before the cutoff and returns
	// how many were reaped.
	DeleteExpired(before time.Time) (int64, error)
}
