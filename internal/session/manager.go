package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quickkart/storefront-gateway/internal/cart"
	"github.com/quickkart/storefront-gateway/internal/catalog"
	"github.com/quickkart/storefront-gateway/internal/checkout"
	"github.com/quickkart/storefront-gateway/internal/orders"
	pkgerrors "github.com/quickkart/storefront-gateway/pkg/errors"
	redislib "github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when a session id has no stored upstream token.
var ErrNoSession = errors.New("no active session")

type tokenStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type tokenKeyer interface {
	SessionTokenKey(sessionID string) string
}

// TokenSource supplies the upstream credential for one session.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Engine is the per-session cart/order machinery. One engine exists per
// gateway session; it dies with the session.
type Engine struct {
	Cart      *cart.Store
	Catalog   catalog.Catalog
	Submitter *checkout.Submitter
	Pager     *orders.Pager
}

// EngineBuilder constructs the engine for a new session, wiring the session's
// token source into the backend collaborators.
type EngineBuilder func(tokens TokenSource) (*Engine, error)

// Manager owns gateway sessions: the redis-stored upstream token keyed by the
// JWT's jti, and the in-memory engine registry.
type Manager struct {
	store tokenStore
	keyer tokenKeyer
	ttl   time.Duration
	build EngineBuilder

	mu      sync.Mutex
	engines map[string]*Engine
}

// NewManager constructs a session manager backed by redis.
func NewManager(store tokenStore, keyer tokenKeyer, ttl time.Duration, build EngineBuilder) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if keyer == nil {
		return nil, fmt.Errorf("token keyer is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	if build == nil {
		return nil, fmt.Errorf("engine builder is required")
	}
	return &Manager{
		store:   store,
		keyer:   keyer,
		ttl:     ttl,
		build:   build,
		engines: make(map[string]*Engine),
	}, nil
}

// Create opens a new session for the upstream token and returns its id, which
// becomes the JWT jti.
func (m *Manager) Create(ctx context.Context, upstreamToken string) (string, error) {
	if strings.TrimSpace(upstreamToken) == "" {
		return "", fmt.Errorf("upstream token is required")
	}

	sessionID := uuid.NewString()
	if err := m.store.Set(ctx, m.keyer.SessionTokenKey(sessionID), upstreamToken, m.ttl); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session token")
	}

	engine, err := m.build(m.tokenSource(sessionID))
	if err != nil {
		_ = m.store.Del(ctx, m.keyer.SessionTokenKey(sessionID))
		return "", err
	}

	m.mu.Lock()
	m.engines[sessionID] = engine
	m.mu.Unlock()
	return sessionID, nil
}

// Engine returns the session's engine, rebuilding it when the registry entry
// was lost (gateway restart) but the redis token is still live.
func (m *Manager) Engine(ctx context.Context, sessionID string) (*Engine, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrNoSession
	}

	m.mu.Lock()
	engine, ok := m.engines[sessionID]
	m.mu.Unlock()
	if ok {
		return engine, nil
	}

	if _, err := m.store.Get(ctx, m.keyer.SessionTokenKey(sessionID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrNoSession
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session token")
	}

	engine, err := m.build(m.tokenSource(sessionID))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if existing, ok := m.engines[sessionID]; ok {
		engine = existing
	} else {
		m.engines[sessionID] = engine
	}
	m.mu.Unlock()
	return engine, nil
}

// Revoke ends the session: the upstream token is deleted and the engine
// dropped. Safe to call for an already-revoked session.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.engines, sessionID)
	m.mu.Unlock()

	if err := m.store.Del(ctx, m.keyer.SessionTokenKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session token")
	}
	return nil
}

// HasSession reports whether the session id still has a live upstream token.
func (m *Manager) HasSession(ctx context.Context, sessionID string) (bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return false, nil
	}
	if _, err := m.store.Get(ctx, m.keyer.SessionTokenKey(sessionID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *Manager) tokenSource(sessionID string) TokenSource {
	return &redisTokenSource{manager: m, sessionID: sessionID}
}

type redisTokenSource struct {
	manager   *Manager
	sessionID string
}

// Token reads the upstream credential from redis on every call, so revocation
// takes effect immediately for in-flight engines.
func (t *redisTokenSource) Token(ctx context.Context) (string, error) {
	token, err := t.manager.store.Get(ctx, t.manager.keyer.SessionTokenKey(t.sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session token")
	}
	return token, nil
}
