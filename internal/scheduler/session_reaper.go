package scheduler

import (
	"context"
	"log"
	"time"

	"petbox/internal/repositories"
)

// SessionReaper sweeps payment sessions abandoned mid-checkout. A buyer who
// never returns from the challenge page otherwise leaves their session row
// behind forever.
type SessionReaper struct {
	sessionRepo repositories.SessionRepository
	ttl         time.Duration
	interval    time.Duration
	now         func() time.Time
}

// NewSessionReaper creates a new SessionReaper. Sessions older than ttl are
// removed on every tick.
func NewSessionReaper(sessionRepo repositories.SessionRepository, ttl, interval time.Duration) *SessionReaper {
	return &SessionReaper{
		sessionRepo: sessionRepo,
		ttl:         ttl,
		interval:    interval,
		now:         time.Now,
	}
}

// Run ticks until the context is cancelled.
func (r *SessionReaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce()
		}
	}
}

// RunOnce performs a single sweep and returns how many sessions were reaped.
func (r *SessionReaper) RunOnce() int64 {
	cutoff := r.now().Add(-r.ttl)
	reaped, err := r.sessionRepo.DeleteExpired(cutoff)
	if err != nil {
		log.Printf("Session reaper sweep failed: %v", err)
		return 0
	}
	if reaped > 0 {
		log.Printf("Session reaper removed %d abandoned payment sessions", reaped)
	}
	return reaped
}
