package auth

import (
	"context"
	"strings"
	"time"

	"github.com/MrSnakeDoc/storefront/internal/logger"
	"github.com/MrSnakeDoc/storefront/internal/metrics"
)

// ReadyState is the lifecycle of the identity provider handle.
type ReadyState string

const (
	ReadyStateIdle        ReadyState = "idle"
	ReadyStatePolling     ReadyState = "polling"
	ReadyStateReady       ReadyState = "ready"
	ReadyStateUnavailable ReadyState = "unavailable" // the script did not load; non-fatal
)

// PollOptions is the readiness retry policy.
type PollOptions struct {
	Interval     time.Duration // first wait between attempts (ex: 500ms)
	MaxWait      time.Duration // cap of the exponential backoff
	Timeout      time.Duration // total time before giving up (ex: 10s)
	ProbeTimeout time.Duration // bound of a single readiness probe
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = 500 * time.Millisecond
	}
	if o.MaxWait <= 0 {
		o.MaxWait = o.Interval
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = 2 * time.Second
	}
	return o
}

type poller struct {
	clientID string
	cancel   context.CancelFunc
	done     chan struct{}
}

func (p *poller) stop() {
	p.cancel()
	<-p.done
}

// Start polls Initialize for clientID in the background until it succeeds or
// the poll timeout expires. Switching to another client id stops the previous
// poller and drops its handle and pending attempt first. Starting again after
// ReadyStateUnavailable retries. The poller outlives ctx cancellation; Close
// stops it.
func (m *Manager) Start(ctx context.Context, clientID string, onGranted GrantedFunc) {
	clientID = strings.TrimSpace(clientID)

	m.mu.Lock()
	old := m.poller
	if old != nil && old.clientID == clientID && m.state != ReadyStateUnavailable {
		m.mu.Unlock()
		return
	}
	m.poller = nil
	m.mu.Unlock()

	if old != nil {
		old.stop()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil && m.handle.ClientID != clientID {
		m.abandonLocked()
		m.handle = nil
		metrics.SetSDKReady(false)
	}
	if m.session.SetClientID(clientID) {
		m.logger.Info("client id changed, credential cleared", logger.String("client_id", clientID))
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.poll.Timeout)
	p := &poller{clientID: clientID, cancel: cancel, done: make(chan struct{})}
	m.poller = p
	m.state = ReadyStatePolling

	go m.runPoller(pctx, p, onGranted)
}

// runPoller retries initialize with exponential backoff capped at MaxWait.
func (m *Manager) runPoller(ctx context.Context, p *poller, onGranted GrantedFunc) {
	defer close(p.done)
	defer p.cancel()

	attempt := 0
	wait := m.poll.Interval

	for {
		attempt++

		probeCtx, probeCancel := context.WithTimeout(ctx, m.poll.ProbeTimeout)
		ok := m.initialize(probeCtx, p.clientID, onGranted)
		probeCancel()

		if ok {
			m.finishPoll(p, ReadyStateReady)
			m.logger.Info("identity provider ready",
				logger.String("client_id", p.clientID),
				logger.Int("attempts", attempt))
			return
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			if ctx.Err() == context.DeadlineExceeded {
				m.finishPoll(p, ReadyStateUnavailable)
				m.logger.Warn("identity provider did not load before timeout",
					logger.String("client_id", p.clientID),
					logger.Int("attempts", attempt),
					logger.Duration("timeout", m.poll.Timeout))
			}
			return

		case <-timer.C:
			m.logger.Debug("identity provider not ready, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("next_retry_in", wait))
			wait *= 2
			if wait > m.poll.MaxWait {
				wait = m.poll.MaxWait
			}
		}
	}
}

// finishPoll records the terminal state unless p was replaced meanwhile.
func (m *Manager) finishPoll(p *poller, state ReadyState) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.poller != p {
		return
	}
	m.state = state
	if state == ReadyStateUnavailable {
		metrics.SetSDKReady(false)
	}
}

// Close stops the readiness poller and abandons any pending attempt.
func (m *Manager) Close() {
	m.mu.Lock()
	p := m.poller
	m.abandonLocked()
	m.mu.Unlock()

	if p != nil {
		p.stop()
	}
}
