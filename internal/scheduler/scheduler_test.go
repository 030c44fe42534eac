package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/storefront/internal/domain"
	"github.com/MrSnakeDoc/storefront/internal/logger"
	"github.com/MrSnakeDoc/storefront/internal/session"
	redisstore "github.com/MrSnakeDoc/storefront/internal/store/redis"
)

func newTestStore(t *testing.T) *redisstore.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.NewStore(client)
}

func TestCredentialRestorer_Restore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	cred := session.Credential{ClientID: "current", AccessToken: "ya29.token", ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.SaveCredential(ctx, cred); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveCredential(ctx, session.Credential{ClientID: "previous", AccessToken: "old"}); err != nil {
		t.Fatal(err)
	}

	sess := session.New("current")
	restored, err := NewCredentialRestorer(store, sess, logger.Nop()).Restore(ctx)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if !restored || sess.AccessToken() != "ya29.token" {
		t.Errorf("Restore() = %v, token %q", restored, sess.AccessToken())
	}

	if _, err := store.LoadCredential(ctx, "previous"); !errors.Is(err, redisstore.ErrCredentialNotFound) {
		t.Errorf("credential of previous client kept, err = %v", err)
	}
}

func TestCredentialRestorer_NothingPersisted(t *testing.T) {
	sess := session.New("current")

	restored, err := NewCredentialRestorer(newTestStore(t), sess, logger.Nop()).Restore(context.Background())
	if err != nil || restored {
		t.Errorf("Restore() = %v, %v, want false, nil", restored, err)
	}
	if sess.Credential().Authenticated() {
		t.Error("session authenticated without a persisted credential")
	}
}

type countingSweeper struct{ n atomic.Int32 }

func (c *countingSweeper) Sweep() int {
	c.n.Add(1)
	return 1
}

func TestConsentSweeper(t *testing.T) {
	defer goleak.VerifyNone(t)

	sw := &countingSweeper{}
	cs := NewConsentSweeper(sw, logger.Nop(), 5*time.Millisecond)
	if err := cs.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for sw.n.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper did not tick")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cs.Stop()
}

type fakeSource struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSource) ReloadBusinesses(context.Context) ([]domain.Business, error) {
	f.calls.Add(1)
	return []domain.Business{{ID: "loc"}}, f.err
}

func TestBusinessReloader_ManualTrigger(t *testing.T) {
	defer goleak.VerifyNone(t)

	var authed atomic.Bool
	src := &fakeSource{}
	trigger := make(chan struct{}, 1)
	br := NewBusinessReloader(src, authed.Load, logger.Nop(), 0, trigger)

	if err := br.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := src.calls.Load(); n != 0 {
		t.Errorf("reloaded %d times while unauthenticated", n)
	}

	authed.Store(true)
	Trigger(trigger)
	Trigger(trigger) // absorbed or queued, never blocks

	deadline := time.Now().Add(2 * time.Second)
	for src.calls.Load() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("manual trigger ignored")
		}
		time.Sleep(5 * time.Millisecond)
	}
	br.Stop()
}

func TestBusinessReloader_StopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	src := &fakeSource{err: errors.New("API Error 401: unauthenticated")}
	ctx, cancel := context.WithCancel(context.Background())
	br := NewBusinessReloader(src, func() bool { return true }, logger.Nop(), 5*time.Millisecond, make(chan struct{}))

	if err := br.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if n := src.calls.Load(); n != 1 {
		t.Errorf("initial reload calls = %d, want 1", n)
	}
	cancel()
	br.Stop()
}
