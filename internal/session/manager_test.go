package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/quickkart/storefront-gateway/internal/cart"
	pkgerrors "github.com/quickkart/storefront-gateway/pkg/errors"
	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	data map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string]string)}
}

func (f *fakeStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.data[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) SessionTokenKey(sessionID string) string {
	return "sfg:session:" + sessionID
}

func testBuilder(builds *int) EngineBuilder {
	return func(TokenSource) (*Engine, error) {
		if builds != nil {
			*builds++
		}
		return &Engine{Cart: cart.NewStore()}, nil
	}
}

func newTestManager(t *testing.T, store *fakeStore, builds *int) *Manager {
	t.Helper()
	manager, err := NewManager(store, fakeKeyer{}, time.Hour, testBuilder(builds))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

func TestCreateAndLookupSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	manager := newTestManager(t, store, nil)

	sessionID, err := manager.Create(context.Background(), "upstream-token")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if sessionID == "" {
		t.Fatal("expected a session id")
	}
	if store.data["sfg:session:"+sessionID] != "upstream-token" {
		t.Fatal("upstream token not stored")
	}

	engine, err := manager.Engine(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("engine lookup: %v", err)
	}
	if engine == nil || engine.Cart == nil {
		t.Fatal("expected a built engine")
	}
}

func TestEngineLookupIsStablePerSession(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	builds := 0
	manager := newTestManager(t, store, &builds)

	sessionID, err := manager.Create(context.Background(), "tok")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first, err := manager.Engine(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	second, err := manager.Engine(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if first != second {
		t.Fatal("engine must be stable across lookups")
	}
	if builds != 1 {
		t.Fatalf("expected one build, got %d", builds)
	}
}

func TestEngineRebuiltAfterRegistryLoss(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	builds := 0
	manager := newTestManager(t, store, &builds)

	sessionID, err := manager.Create(context.Background(), "tok")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// simulate a gateway restart: registry gone, redis token alive
	manager.mu.Lock()
	manager.engines = make(map[string]*Engine)
	manager.mu.Unlock()

	engine, err := manager.Engine(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("engine after restart: %v", err)
	}
	if engine == nil {
		t.Fatal("expected rebuilt engine")
	}
	if builds != 2 {
		t.Fatalf("expected rebuild, got %d builds", builds)
	}
}

func TestRevokedSessionIsGone(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	manager := newTestManager(t, store, nil)

	sessionID, err := manager.Create(context.Background(), "tok")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := manager.Revoke(context.Background(), sessionID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, err := manager.Engine(context.Background(), sessionID); err != ErrNoSession {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	ok, err := manager.HasSession(context.Background(), sessionID)
	if err != nil || ok {
		t.Fatalf("expected no session, got ok=%v err=%v", ok, err)
	}

	// revoking twice is fine
	if err := manager.Revoke(context.Background(), sessionID); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}

func TestTokenSourceReflectsRevocation(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	var captured TokenSource
	manager, err := NewManager(store, fakeKeyer{}, time.Hour, func(tokens TokenSource) (*Engine, error) {
		captured = tokens
		return &Engine{}, nil
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	sessionID, err := manager.Create(context.Background(), "live-token")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	token, err := captured.Token(context.Background())
	if err != nil || token != "live-token" {
		t.Fatalf("expected live token, got %q err=%v", token, err)
	}

	if err := manager.Revoke(context.Background(), sessionID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := captured.Token(context.Background()); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED after revoke, got %v", err)
	}
}
