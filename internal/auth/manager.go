// Package auth runs the delegated-authorization handshake with the identity
// provider and stores the resulting bearer token in the session.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/MrSnakeDoc/storefront/internal/logger"
	"github.com/MrSnakeDoc/storefront/internal/metrics"
	"github.com/MrSnakeDoc/storefront/internal/session"
)

// DefaultConsentTTL is how long a pending consent blocks new triggers.
const DefaultConsentTTL = 10 * time.Minute

// GrantedFunc is called with the token after every successful consent.
type GrantedFunc func(token string)

// Handle is an initialized consent-request channel for one client id.
type Handle struct {
	ClientID  string
	client    TokenClient
	onGranted GrantedFunc
}

// Options tunes a Manager. Zero values fall back to the defaults.
type Options struct {
	ConsentTTL time.Duration
	Poll       PollOptions
}

// Manager owns the handle, the pending attempt and the readiness poller.
type Manager struct {
	sdk     SDK
	session *session.Session
	logger  logger.Logger
	now     func() time.Time
	ttl     time.Duration
	poll    PollOptions

	mu      sync.Mutex
	handle  *Handle
	pending *Attempt
	poller  *poller
	state   ReadyState
}

// NewManager creates a manager writing grants into sess.
func NewManager(sdk SDK, sess *session.Session, log logger.Logger, opts Options) *Manager {
	if opts.ConsentTTL <= 0 {
		opts.ConsentTTL = DefaultConsentTTL
	}
	return &Manager{
		sdk:     sdk,
		session: sess,
		logger:  log.With(logger.Component("auth")),
		now:     time.Now,
		ttl:     opts.ConsentTTL,
		poll:    opts.Poll.withDefaults(),
		state:   ReadyStateIdle,
	}
}

// Initialize creates the handle for clientID once the SDK is loaded. It
// returns false while the SDK is not ready; callers poll until true. A
// readiness poller running for another client id is stopped first so its
// retries cannot rebind the handle afterwards.
func (m *Manager) Initialize(ctx context.Context, clientID string, onGranted GrantedFunc) bool {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return false
	}

	m.mu.Lock()
	stale := m.poller
	if stale != nil && stale.clientID != clientID {
		m.poller = nil
		m.state = ReadyStateIdle
	} else {
		stale = nil
	}
	m.mu.Unlock()

	if stale != nil {
		stale.stop()
		m.logger.Info("readiness poller for previous client id stopped",
			logger.String("client_id", stale.clientID))
	}

	if !m.initialize(ctx, clientID, onGranted) {
		return false
	}

	m.mu.Lock()
	if m.poller == nil {
		m.state = ReadyStateReady
	}
	m.mu.Unlock()
	return true
}

// initialize binds the handle. The readiness poller calls it directly.
func (m *Manager) initialize(ctx context.Context, clientID string, onGranted GrantedFunc) bool {

	m.mu.Lock()
	if m.handle != nil && m.handle.ClientID == clientID {
		m.handle.onGranted = onGranted
		m.mu.Unlock()
		return true
	}
	m.mu.Unlock()

	if !m.sdk.Ready(ctx) {
		return false
	}

	client, err := m.sdk.NewTokenClient(clientID)
	if err != nil {
		m.logger.Warn("failed to initialize token client",
			logger.String("client_id", clientID),
			logger.Error(err))
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil && m.handle.ClientID != clientID {
		m.abandonLocked()
	}
	m.session.SetClientID(clientID)
	m.handle = &Handle{ClientID: clientID, client: client, onGranted: onGranted}
	metrics.SetSDKReady(true)
	m.logger.Info("identity provider handle initialized", logger.String("client_id", clientID))
	return true
}

// TriggerLogin opens a consent attempt. The returned Attempt carries the URL
// the owner must visit and resolves when the provider redirects back.
func (m *Manager) TriggerLogin(_ context.Context) (*Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == nil {
		return nil, ErrNotReady
	}

	now := m.now()
	if m.pending != nil {
		if !m.pending.expired(now, m.ttl) {
			return nil, ErrConsentInFlight
		}
		m.logger.Info("superseding stale consent attempt", logger.String("state", m.pending.State))
		m.abandonLocked()
	}

	a := newAttempt(uuid.NewString(), m.handle.ClientID, oauth2.GenerateVerifier(), now)
	a.URL = m.handle.client.ConsentURL(a.State, a.verifier)
	m.pending = a

	m.logger.Info("consent attempt opened",
		logger.String("client_id", a.clientID),
		logger.String("state", a.State))
	return a, nil
}

// take removes and returns the pending attempt matching state.
func (m *Manager) take(state string) (*Attempt, *Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil || state == "" || m.pending.State != state {
		return nil, nil, ErrUnknownAttempt
	}
	a := m.pending
	m.pending = nil
	return a, m.handle, nil
}

// Complete redeems the authorization code of the attempt identified by state.
func (m *Manager) Complete(ctx context.Context, state, code string) (string, error) {
	a, h, err := m.take(state)
	if err != nil {
		return "", err
	}

	tok, err := h.client.Exchange(ctx, code, a.verifier)
	if err != nil {
		authErr := &AuthError{Type: ErrorTypeExchange, Message: err.Error()}
		a.resolve("", authErr)
		metrics.ObserveConsent(metrics.ConsentError)
		m.logger.Error("consent failed", logger.Error(err))
		return "", authErr
	}

	if m.session.ClientID() != a.clientID {
		a.resolve("", ErrConsentAbandoned)
		metrics.ObserveConsent(metrics.ConsentAbandoned)
		return "", ErrConsentAbandoned
	}

	m.session.Grant(tok.AccessToken, tok.Expiry)
	a.resolve(tok.AccessToken, nil)
	metrics.ObserveConsent(metrics.ConsentGranted)
	m.logger.Info("consent granted", logger.String("client_id", a.clientID))

	if h.onGranted != nil {
		h.onGranted(tok.AccessToken)
	}
	return tok.AccessToken, nil
}

// Fail resolves the attempt identified by state with a provider error.
func (m *Manager) Fail(state string, authErr *AuthError) error {
	a, _, err := m.take(state)
	if err != nil {
		return err
	}

	a.resolve("", authErr)
	if authErr.Declined() {
		metrics.ObserveConsent(metrics.ConsentDeclined)
	} else {
		metrics.ObserveConsent(metrics.ConsentError)
	}
	m.logger.Warn("consent failed",
		logger.String("type", authErr.Type),
		logger.String("message", authErr.Message))
	return authErr
}

// Sweep abandons the pending attempt once it is older than the consent TTL.
// It returns the number of attempts abandoned.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil || !m.pending.expired(m.now(), m.ttl) {
		return 0
	}
	m.logger.Info("abandoning stale consent attempt", logger.String("state", m.pending.State))
	m.abandonLocked()
	return 1
}

func (m *Manager) abandonLocked() {
	if m.pending == nil {
		return
	}
	if m.pending.resolve("", ErrConsentAbandoned) {
		metrics.ObserveConsent(metrics.ConsentAbandoned)
	}
	m.pending = nil
}

// Status is a snapshot of the handshake state.
type Status struct {
	State         ReadyState `json:"state"`
	ClientID      string     `json:"client_id"`
	Authenticated bool       `json:"authenticated"`
	Pending       bool       `json:"pending"`
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Status{
		State:         m.state,
		ClientID:      m.session.ClientID(),
		Authenticated: m.session.Credential().Authenticated(),
		Pending:       m.pending != nil,
	}
}

// IsDeclined reports whether err is a consent the user dismissed.
func IsDeclined(err error) bool {
	authErr, ok := AsAuthError(err)
	return ok && authErr.Declined()
}

// IsConsentError reports whether err is one of the handshake errors.
func IsConsentError(err error) bool {
	_, ok := AsAuthError(err)
	return ok || errors.Is(err, ErrConsentAbandoned) || errors.Is(err, ErrUnknownAttempt)
}
