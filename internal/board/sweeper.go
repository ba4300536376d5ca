package board

import (
	"context"
	"time"

	"github.com/bwise1/upzunction/internal/logger"
)

const DefaultSweepInterval = 5 * time.Minute

// Sweeper periodically retires expired listings.
type Sweeper struct {
	listings *ListingService
	interval time.Duration
	logger   *logger.Logger
}

func NewSweeper(listings *ListingService, interval time.Duration, log *logger.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Sweeper{listings: listings, interval: interval, logger: log}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
// A failed sweep is logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.listings.SweepExpired(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("expiry sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("deactivated expired listings", "count", n)
	}
}
