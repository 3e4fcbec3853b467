package crashreports

import (
	"context"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/logging"
)

// Sweeper deletes reports older than MaxAge every Interval. Failures are
// logged and the schedule continues.
type Sweeper struct {
	storage  Storage
	maxAge   time.Duration
	interval time.Duration
	logger   logging.Logger
	now      func() time.Time
}

func NewSweeper(storage Storage, maxAge, interval time.Duration, logger logging.Logger, now func() time.Time) *Sweeper {
	return &Sweeper{storage: storage, maxAge: maxAge, interval: interval, logger: logger, now: now}
}

func (s *Sweeper) SweepOnce(ctx context.Context) int {
	cutoff := s.now().Add(-s.maxAge)
	n, err := s.storage.Sweep(ctx, cutoff)
	if err != nil {
		s.logger.Error(ctx, "crash report sweep failed", "deleted", n, "error", err)
		return n
	}
	if n > 0 {
		s.logger.Info(ctx, "old crash reports deleted", "count", n)
	}
	return n
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	s.SweepOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}
