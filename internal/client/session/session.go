// Package session holds the admin bearer token for one client process.
package session

import (
	"context"
	"log/slog"
	"sync"

	"auraweb-intake/internal/client/localcache"
)

// Store is the durable side of a session. *localcache.Cache satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Session struct {
	mu    sync.RWMutex
	token string
	store Store
	log   *slog.Logger
}

// New returns an empty session. store may be nil for a memory-only session.
func New(store Store, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{store: store, log: log}
}

// Restore loads a previously persisted token, if any.
func Restore(ctx context.Context, store Store, log *slog.Logger) (*Session, error) {
	s := New(store, log)
	if store == nil {
		return s, nil
	}
	raw, ok, err := store.Get(ctx, localcache.KeyAdminToken)
	if err != nil {
		return s, err
	}
	if ok {
		s.token = string(raw)
	}
	return s, nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set installs a freshly issued token and persists it.
func (s *Session) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Put(ctx, localcache.KeyAdminToken, []byte(token))
}

// Invalidate forgets the token in memory and on disk. The in-memory copy is
// cleared even when the durable delete fails.
func (s *Session) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	had := s.token != ""
	s.token = ""
	s.mu.Unlock()

	if had {
		s.log.Info("session invalidated")
	}
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, localcache.KeyAdminToken)
}
