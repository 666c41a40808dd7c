package app

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// HoldExpirer resets lapsed reservation holds and reports how many slots it
// freed.
type HoldExpirer interface {
	ExpireStale(ctx context.Context) (int, error)
}

// Sweeper runs the expiry sweep on a fixed interval, independent of any
// request. Each run is an idempotent bulk update, so overlapping runs and
// in-flight reservations are safe.
type Sweeper struct {
	expirer  HoldExpirer
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewSweeper builds a sweeper ticking at the given interval.
func NewSweeper(expirer HoldExpirer, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		expirer:  expirer,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Starting hold expiry sweeper", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

// Stop terminates the sweep loop.
func (s *Sweeper) Stop() {
	s.logger.Info("Stopping hold expiry sweeper")
	close(s.stopChan)
}

func (s *Sweeper) run(ctx context.Context) {
	// First sweep right away so a restart does not leave lapsed holds
	// sitting for a full interval.
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Hold expiry sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Hold expiry sweeper cancelled")
			return
		}
	}
}

// sweep runs one expiry pass with a short retry budget; a run that still
// fails is dropped, the next tick picks the same holds up again.
func (s *Sweeper) sweep(ctx context.Context) {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		freed, err := s.expirer.ExpireStale(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		if freed > 0 {
			s.logger.Info("Sweep freed lapsed holds", zap.Int("count", freed))
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Hold expiry sweep failed", zap.Error(err))
	}
}
