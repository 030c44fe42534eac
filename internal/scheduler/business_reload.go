package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/storefront/internal/domain"
	"github.com/MrSnakeDoc/storefront/internal/logger"
)

// BusinessSource runs the discovery walk. *dashboard.Service satisfies it.
type BusinessSource interface {
	ReloadBusinesses(ctx context.Context) ([]domain.Business, error)
}

// BusinessReloader refreshes the business list after each consent and,
// when an interval is set, periodically
type BusinessReloader struct {
	source        BusinessSource
	authenticated func() bool
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	done          chan struct{}
	manualTrigger chan struct{}
}

// NewBusinessReloader creates a new business reloader. interval <= 0 disables
// the periodic reload; manualTrigger still works.
func NewBusinessReloader(
	source BusinessSource,
	authenticated func() bool,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *BusinessReloader {
	return &BusinessReloader{
		source:        source,
		authenticated: authenticated,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins the reload loop. An authenticated session (restored
// credential) is loaded immediately.
func (br *BusinessReloader) Start(ctx context.Context) error {
	br.Reload(ctx)

	go func() {
		defer close(br.done)

		var tick <-chan time.Time
		if br.interval > 0 {
			ticker := time.NewTicker(br.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				br.Reload(ctx)
			case <-br.manualTrigger:
				br.logger.Info("manual business reload triggered")
				br.Reload(ctx)
			case <-br.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader and waits for its goroutine
func (br *BusinessReloader) Stop() {
	close(br.stopCh)
	<-br.done
}

// Reload runs the discovery walk when the session is authenticated
func (br *BusinessReloader) Reload(ctx context.Context) {
	if !br.authenticated() {
		br.logger.Debug("skipping business reload, not authenticated")
		return
	}

	businesses, err := br.source.ReloadBusinesses(ctx)
	if err != nil {
		br.logger.Error("failed to reload businesses", logger.Error(err))
		return
	}
	br.logger.Info("businesses reloaded", logger.Int("count", len(businesses)))
}

// Trigger asks for a reload without blocking; a reload already queued absorbs it
func Trigger(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
