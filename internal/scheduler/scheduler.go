package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"petbox/internal/repositories"
)

// FulfillmentScheduler advances every due subscription by one billing period
// on a fixed interval. Two guards make it safe to run anywhere:
//
//   - a per-day run-claim row, so horizontally scaled instances never
//     process the same day twice, and
//   - a conditional per-subscription advance keyed on the delivery date, so
//     a re-run within the same period is a no-op.
type FulfillmentScheduler struct {
	subscriptionRepo repositories.SubscriptionRepository
	interval         time.Duration
	now              func() time.Time
}

// NewFulfillmentScheduler creates a new FulfillmentScheduler.
func NewFulfillmentScheduler(subscriptionRepo repositories.SubscriptionRepository, interval time.Duration) *FulfillmentScheduler {
	return &FulfillmentScheduler{
		subscriptionRepo: subscriptionRepo,
		interval:         interval,
		now:              time.Now,
	}
}

// Run ticks until the context is cancelled. The first run happens
// immediately so a restarted instance does not wait a whole interval.
func (s *FulfillmentScheduler) Run(ctx context.Context) {
	s.RunOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce claims and executes a single fulfillment pass. It returns the
// number of subscriptions advanced; a pass another instance already claimed
// counts as zero.
func (s *FulfillmentScheduler) RunOnce() int {
	now := s.now()
	runDate := now.Format("2006-01-02")

	if err := s.subscriptionRepo.ClaimRun(runDate, now); err != nil {
		if errors.Is(err, repositories.ErrRunAlreadyClaimed) {
			log.Printf("Fulfillment run %s already claimed, skipping", runDate)
			return 0
		}
		log.Printf("Failed to claim fulfillment run %s: %v", runDate, err)
		return 0
	}

	due, err := s.subscriptionRepo.FindDue(now)
	if err != nil {
		log.Printf("Failed to load due subscriptions: %v", err)
		return 0
	}

	advanced := 0
	for _, sub := range due {
		// Each subscription commits independently so one failure never
		// blocks the rest of the run.
		ok, err := s.subscriptionRepo.AdvancePeriod(sub.ID, now)
		if err != nil {
			log.Printf("Failed to advance subscription %s: %v", sub.ID, err)
			continue
		}
		if ok {
			advanced++
		}
	}

	log.Printf("Fulfillment run %s: %d of %d due subscriptions advanced", runDate, advanced, len(due))
	return advanced
}
