package auth

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/storefront/internal/logger"
	"github.com/MrSnakeDoc/storefront/internal/session"
)

const testClientID = "123.apps.googleusercontent.com"

type fakeSDK struct {
	ready      atomic.Bool
	readyAfter int32 // becomes ready on this Ready call when > 0
	probes     atomic.Int32
	reject     atomic.Value // client id whose token client cannot be built
}

func (f *fakeSDK) Ready(context.Context) bool {
	n := f.probes.Add(1)
	return f.ready.Load() || (f.readyAfter > 0 && n >= f.readyAfter)
}

func (f *fakeSDK) NewTokenClient(clientID string) (TokenClient, error) {
	if rejected, _ := f.reject.Load().(string); rejected == clientID {
		return nil, errors.New("invalid client id")
	}
	return &fakeTokenClient{clientID: clientID}, nil
}

type fakeTokenClient struct {
	clientID string
}

func (c *fakeTokenClient) ConsentURL(state, _ string) string {
	return "https://consent.test/auth?client_id=" + c.clientID + "&state=" + state
}

func (c *fakeTokenClient) Exchange(_ context.Context, code, verifier string) (Token, error) {
	if code == "bad" {
		return Token{}, errors.New("invalid_grant")
	}
	if verifier == "" {
		return Token{}, errors.New("missing verifier")
	}
	return Token{AccessToken: "tok-" + code, Expiry: time.Now().Add(time.Hour)}, nil
}

func readySDK() *fakeSDK {
	f := &fakeSDK{}
	f.ready.Store(true)
	return f
}

func newTestManager(sdk SDK, opts Options) (*Manager, *session.Session) {
	sess := session.New(testClientID)
	return NewManager(sdk, sess, logger.Nop(), opts), sess
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestInitializeNotReady(t *testing.T) {
	m, _ := newTestManager(&fakeSDK{}, Options{})

	if m.Initialize(context.Background(), testClientID, nil) {
		t.Fatal("Initialize() = true, want false while SDK is loading")
	}
	if _, err := m.TriggerLogin(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Errorf("TriggerLogin() error = %v, want ErrNotReady", err)
	}
}

func TestInitializeIsRepeatable(t *testing.T) {
	sdk := readySDK()
	m, _ := newTestManager(sdk, Options{})

	for i := 0; i < 3; i++ {
		if !m.Initialize(context.Background(), testClientID, nil) {
			t.Fatalf("Initialize() call %d = false", i)
		}
	}
	if n := sdk.probes.Load(); n != 1 {
		t.Errorf("SDK probed %d times, want 1 once the handle exists", n)
	}
	if _, err := m.TriggerLogin(context.Background()); err != nil {
		t.Errorf("TriggerLogin() error = %v", err)
	}
}

func TestTriggerLoginSerializes(t *testing.T) {
	m, _ := newTestManager(readySDK(), Options{ConsentTTL: time.Minute})
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	m.Initialize(context.Background(), testClientID, nil)

	first, err := m.TriggerLogin(context.Background())
	if err != nil {
		t.Fatalf("TriggerLogin() error = %v", err)
	}
	if !strings.Contains(first.URL, "state="+first.State) {
		t.Errorf("consent url %q does not carry state", first.URL)
	}

	if _, err := m.TriggerLogin(context.Background()); !errors.Is(err, ErrConsentInFlight) {
		t.Fatalf("second TriggerLogin() error = %v, want ErrConsentInFlight", err)
	}

	now = now.Add(time.Minute)
	second, err := m.TriggerLogin(context.Background())
	if err != nil {
		t.Fatalf("TriggerLogin() after TTL error = %v", err)
	}
	if second.State == first.State {
		t.Error("expected a fresh attempt")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := first.Wait(ctx); !errors.Is(err, ErrConsentAbandoned) {
		t.Errorf("superseded attempt error = %v, want ErrConsentAbandoned", err)
	}
}

func TestCompleteGrantsToken(t *testing.T) {
	m, sess := newTestManager(readySDK(), Options{})

	var granted string
	m.Initialize(context.Background(), testClientID, func(token string) { granted = token })

	a, err := m.TriggerLogin(context.Background())
	if err != nil {
		t.Fatalf("TriggerLogin() error = %v", err)
	}

	tok, err := m.Complete(context.Background(), a.State, "code1")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if tok != "tok-code1" || granted != tok {
		t.Errorf("token = %q, onGranted got %q", tok, granted)
	}
	if got := sess.AccessToken(); got != tok {
		t.Errorf("session token = %q, want %q", got, tok)
	}

	waited, err := a.Wait(context.Background())
	if err != nil || waited != tok {
		t.Errorf("Wait() = %q, %v", waited, err)
	}

	// The attempt resolves exactly once.
	if _, err := m.Complete(context.Background(), a.State, "code2"); !errors.Is(err, ErrUnknownAttempt) {
		t.Errorf("second Complete() error = %v, want ErrUnknownAttempt", err)
	}
	if m.Status().Pending {
		t.Error("attempt still pending after completion")
	}
}

func TestCompleteExchangeFailure(t *testing.T) {
	m, sess := newTestManager(readySDK(), Options{})
	m.Initialize(context.Background(), testClientID, nil)
	a, _ := m.TriggerLogin(context.Background())

	_, err := m.Complete(context.Background(), a.State, "bad")

	authErr, ok := AsAuthError(err)
	if !ok || authErr.Type != ErrorTypeExchange {
		t.Fatalf("error = %v, want exchange AuthError", err)
	}
	if sess.Credential().Authenticated() {
		t.Error("session authenticated after a failed exchange")
	}
}

func TestCompleteUnknownState(t *testing.T) {
	m, _ := newTestManager(readySDK(), Options{})
	m.Initialize(context.Background(), testClientID, nil)
	if _, err := m.TriggerLogin(context.Background()); err != nil {
		t.Fatal(err)
	}

	for _, state := range []string{"", "forged"} {
		if _, err := m.Complete(context.Background(), state, "code"); !errors.Is(err, ErrUnknownAttempt) {
			t.Errorf("Complete(%q) error = %v, want ErrUnknownAttempt", state, err)
		}
	}
	if !m.Status().Pending {
		t.Error("a forged state must not consume the pending attempt")
	}
}

func TestFailDeclined(t *testing.T) {
	m, _ := newTestManager(readySDK(), Options{})
	m.Initialize(context.Background(), testClientID, nil)
	a, _ := m.TriggerLogin(context.Background())

	err := m.Fail(a.State, &AuthError{Type: ErrorTypePopupClosed})
	if !IsDeclined(err) {
		t.Fatalf("Fail() error = %v, want declined", err)
	}

	_, waitErr := a.Wait(context.Background())
	authErr, ok := AsAuthError(waitErr)
	if !ok {
		t.Fatalf("Wait() error = %v, want *AuthError", waitErr)
	}
	origin := "https://dashboard.example.com"
	if msg := authErr.UserMessage(origin); !strings.Contains(msg, origin) {
		t.Errorf("UserMessage() = %q, want origin %q", msg, origin)
	}
}

func TestSweepAbandonsStaleAttempt(t *testing.T) {
	m, _ := newTestManager(readySDK(), Options{ConsentTTL: time.Minute})
	now := time.Now()
	m.now = func() time.Time { return now }
	m.Initialize(context.Background(), testClientID, nil)
	a, _ := m.TriggerLogin(context.Background())

	if n := m.Sweep(); n != 0 {
		t.Fatalf("Sweep() = %d on a fresh attempt, want 0", n)
	}

	now = now.Add(2 * time.Minute)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("Sweep() = %d, want 1", n)
	}
	select {
	case <-a.Done():
	default:
		t.Fatal("attempt not resolved by sweep")
	}
	if _, err := m.TriggerLogin(context.Background()); err != nil {
		t.Errorf("TriggerLogin() after sweep error = %v", err)
	}
}

func TestStartPollsUntilReady(t *testing.T) {
	defer goleak.VerifyNone(t)

	sdk := &fakeSDK{readyAfter: 3}
	m, _ := newTestManager(sdk, Options{Poll: PollOptions{Interval: 5 * time.Millisecond, Timeout: time.Second}})
	defer m.Close()

	m.Start(context.Background(), testClientID, nil)

	waitFor(t, "ready state", func() bool { return m.Status().State == ReadyStateReady })
	if n := sdk.probes.Load(); n != 3 {
		t.Errorf("probes = %d, want 3", n)
	}
}

func TestStartTimesOutAsUnavailable(t *testing.T) {
	defer goleak.VerifyNone(t)

	m, _ := newTestManager(&fakeSDK{}, Options{Poll: PollOptions{Interval: 5 * time.Millisecond, Timeout: 40 * time.Millisecond}})
	defer m.Close()

	m.Start(context.Background(), testClientID, nil)

	waitFor(t, "unavailable state", func() bool { return m.Status().State == ReadyStateUnavailable })
	if _, err := m.TriggerLogin(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Errorf("TriggerLogin() error = %v, want ErrNotReady", err)
	}
}

func TestStartOutlivesRequestContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	sdk := &fakeSDK{readyAfter: 2}
	m, _ := newTestManager(sdk, Options{Poll: PollOptions{Interval: 10 * time.Millisecond, Timeout: time.Second}})
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx, testClientID, nil)
	cancel()

	waitFor(t, "ready state", func() bool { return m.Status().State == ReadyStateReady })
}

func TestStartWithNewClientIDResets(t *testing.T) {
	defer goleak.VerifyNone(t)

	m, sess := newTestManager(readySDK(), Options{Poll: PollOptions{Interval: 5 * time.Millisecond, Timeout: time.Second}})
	defer m.Close()

	m.Start(context.Background(), testClientID, nil)
	waitFor(t, "ready state", func() bool { return m.Status().State == ReadyStateReady })

	sess.Grant("old-token", time.Time{})
	a, err := m.TriggerLogin(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	m.Start(context.Background(), "other.apps.googleusercontent.com", nil)

	if _, err := a.Wait(context.Background()); !errors.Is(err, ErrConsentAbandoned) {
		t.Errorf("old attempt error = %v, want ErrConsentAbandoned", err)
	}
	if sess.AccessToken() != "" {
		t.Error("token of the previous client id kept")
	}
	waitFor(t, "ready state", func() bool {
		s := m.Status()
		return s.State == ReadyStateReady && s.ClientID == "other.apps.googleusercontent.com"
	})

	next, err := m.TriggerLogin(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(next.URL, "client_id=other.apps.googleusercontent.com") {
		t.Errorf("consent url %q bound to the old client", next.URL)
	}
}

func TestInitializeStopsPollerOfPreviousClientID(t *testing.T) {
	defer goleak.VerifyNone(t)

	const otherClientID = "other.apps.googleusercontent.com"

	sdk := readySDK()
	sdk.reject.Store(testClientID)
	m, sess := newTestManager(sdk, Options{Poll: PollOptions{Interval: 5 * time.Millisecond, Timeout: time.Second}})
	defer m.Close()

	m.Start(context.Background(), testClientID, nil)
	waitFor(t, "first probe", func() bool { return sdk.probes.Load() >= 1 })

	if !m.Initialize(context.Background(), otherClientID, nil) {
		t.Fatal("Initialize() = false with a ready SDK")
	}
	sess.Grant("token-for-other", time.Time{})

	// The old client id would now initialize if its poller were still retrying.
	sdk.reject.Store("")
	time.Sleep(50 * time.Millisecond)

	s := m.Status()
	if s.ClientID != otherClientID || s.State != ReadyStateReady {
		t.Errorf("status = %+v, want client %s ready", s, otherClientID)
	}
	if got := sess.AccessToken(); got != "token-for-other" {
		t.Errorf("token = %q, want token-for-other", got)
	}
}

func TestAuthErrorUserMessage(t *testing.T) {
	origin := "http://localhost:8080"
	tests := []struct {
		name       string
		err        *AuthError
		wantOrigin bool
		wantText   string
	}{
		{name: "popup closed", err: &AuthError{Type: ErrorTypePopupClosed}, wantOrigin: true},
		{name: "access denied", err: &AuthError{Type: ErrorTypeAccessDenied, Message: "user said no"}, wantOrigin: true},
		{name: "other", err: &AuthError{Type: "invalid_client", Message: "The OAuth client was not found."}, wantText: "invalid_client - The OAuth client was not found."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.UserMessage(origin)
			if got := strings.Contains(msg, origin); got != tt.wantOrigin {
				t.Errorf("UserMessage() = %q, contains origin = %v, want %v", msg, got, tt.wantOrigin)
			}
			if tt.wantText != "" && !strings.Contains(msg, tt.wantText) {
				t.Errorf("UserMessage() = %q, want raw %q", msg, tt.wantText)
			}
		})
	}
}
