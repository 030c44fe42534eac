// Package session holds the delegated-access credential of the running dashboard.
//
// A Session is created once at startup and handed to every component that
// needs the bearer token. It has a single writer (the consent completion path)
// and many readers.
package session

import (
	"strings"
	"sync"
	"time"
)

// Credential is the client identifier plus the bearer token obtained for it.
type Credential struct {
	ClientID    string    `json:"client_id"`
	AccessToken string    `json:"access_token,omitempty"`
	GrantedAt   time.Time `json:"granted_at,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
}

// Authenticated reports whether a consent round completed successfully.
func (c Credential) Authenticated() bool {
	return c.AccessToken != ""
}

// Session guards the current Credential.
type Session struct {
	mu   sync.RWMutex
	cred Credential
	now  func() time.Time
}

// New creates an unauthenticated session bound to clientID.
func New(clientID string) *Session {
	return &Session{
		cred: Credential{ClientID: strings.TrimSpace(clientID)},
		now:  time.Now,
	}
}

// Credential returns a snapshot of the current credential.
func (s *Session) Credential() Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred
}

func (s *Session) ClientID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.ClientID
}

// AccessToken returns the bearer token, or "" before any successful consent.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.AccessToken
}

// SetClientID switches the session to another client. A token granted to the
// previous client is dropped. Returns true when the client actually changed.
func (s *Session) SetClientID(clientID string) bool {
	clientID = strings.TrimSpace(clientID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cred.ClientID == clientID {
		return false
	}
	s.cred = Credential{ClientID: clientID}
	return true
}

// Grant stores the token obtained for the current client and returns the
// resulting credential. expiresAt may be zero when the provider did not say.
func (s *Session) Grant(token string, expiresAt time.Time) Credential {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cred.AccessToken = token
	s.cred.GrantedAt = s.now()
	s.cred.ExpiresAt = expiresAt
	return s.cred
}

// Restore installs a previously persisted credential if it belongs to the
// current client. Returns false when it was ignored.
func (s *Session) Restore(c Credential) bool {
	if !c.Authenticated() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ClientID != s.cred.ClientID {
		return false
	}
	if !c.ExpiresAt.IsZero() && !s.now().Before(c.ExpiresAt) {
		return false
	}
	s.cred = c
	return true
}
