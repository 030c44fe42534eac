package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/storefront/internal/logger"
)

const (
	// DefaultSweepInterval is how often pending consents are checked
	DefaultSweepInterval = time.Minute
)

// Sweeper abandons stale consent attempts. *auth.Manager satisfies it.
type Sweeper interface {
	Sweep() int
}

// ConsentSweeper periodically abandons consent attempts the owner never
// finished, so a new login can be triggered
type ConsentSweeper struct {
	sweeper  Sweeper
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	done     chan struct{}
}

// NewConsentSweeper creates a new consent sweeper
func NewConsentSweeper(sweeper Sweeper, log logger.Logger, interval time.Duration) *ConsentSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	return &ConsentSweeper{
		sweeper:  sweeper,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (cs *ConsentSweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(cs.interval)
	go func() {
		defer close(cs.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cs.Collect()
			case <-cs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the sweeper and waits for its goroutine
func (cs *ConsentSweeper) Stop() {
	close(cs.stopCh)
	<-cs.done
}

// Collect runs one sweep
func (cs *ConsentSweeper) Collect() int {
	n := cs.sweeper.Sweep()
	if n > 0 {
		cs.logger.Info("abandoned stale consent attempts", logger.Int("count", n))
	} else {
		cs.logger.Debug("no stale consent attempt")
	}
	return n
}
