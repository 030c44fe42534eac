package auth

import (
	"context"
	"sync"
	"time"
)

// Attempt is one interactive consent round. It resolves exactly once, with a
// token or an error.
type Attempt struct {
	State     string
	URL       string
	StartedAt time.Time

	clientID string
	verifier string

	once  sync.Once
	done  chan struct{}
	token string
	err   error
}

func newAttempt(state, clientID, verifier string, startedAt time.Time) *Attempt {
	return &Attempt{
		State:     state,
		StartedAt: startedAt,
		clientID:  clientID,
		verifier:  verifier,
		done:      make(chan struct{}),
	}
}

// resolve settles the attempt. Later calls are no-ops; it reports whether
// this call won.
func (a *Attempt) resolve(token string, err error) bool {
	won := false
	a.once.Do(func() {
		a.token, a.err = token, err
		close(a.done)
		won = true
	})
	return won
}

// Done is closed once the attempt is resolved.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until the attempt resolves or ctx ends. Cancelling ctx does not
// abandon the attempt.
func (a *Attempt) Wait(ctx context.Context) (string, error) {
	select {
	case <-a.done:
		return a.token, a.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *Attempt) expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(a.StartedAt) >= ttl
}
