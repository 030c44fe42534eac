package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/storefront/internal/session"
)

const (
	// DefaultCredentialTTL is used when the provider did not report an expiry
	// (Google access tokens live one hour)
	DefaultCredentialTTL = time.Hour
)

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrCredentialExpired  = errors.New("credential already expired")
)

// Store persists the single dashboard credential so a restart does not force
// a new consent while the token is still valid.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

// Ping checks the connection (used by the readiness and infra routes)
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SaveCredential stores c until its expiry
func (s *Store) SaveCredential(ctx context.Context, c session.Credential) error {
	if !c.Authenticated() {
		return fmt.Errorf("refusing to persist unauthenticated credential for %s", c.ClientID)
	}

	ttl := DefaultCredentialTTL
	if !c.ExpiresAt.IsZero() {
		ttl = c.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return ErrCredentialExpired
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	if err := s.client.Set(ctx, CredentialKey(c.ClientID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

// LoadCredential returns the persisted credential of clientID
func (s *Store) LoadCredential(ctx context.Context, clientID string) (session.Credential, error) {
	data, err := s.client.Get(ctx, CredentialKey(clientID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Credential{}, ErrCredentialNotFound
		}
		return session.Credential{}, fmt.Errorf("failed to get credential: %w", err)
	}

	var c session.Credential
	if err := json.Unmarshal(data, &c); err != nil {
		return session.Credential{}, fmt.Errorf("failed to unmarshal credential: %w", err)
	}
	return c, nil
}

// ClearCredential removes the credential of clientID
func (s *Store) ClearCredential(ctx context.Context, clientID string) error {
	if err := s.client.Del(ctx, CredentialKey(clientID)).Err(); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

// ListClientIDs returns every client id with a persisted credential
func (s *Store) ListClientIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, KeyPrefixCredential+"*", 100).Iterator()
	for iter.Next(ctx) {
		id, err := ExtractClientID(iter.Val())
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan credentials: %w", err)
	}
	return ids, nil
}
