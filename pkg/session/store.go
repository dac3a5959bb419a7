package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when no snapshot exists for a session ID.
var ErrNotFound = errors.New("session not found")

// Store persists session snapshots.
type Store interface {
	// Save persists the context's snapshot, replacing any prior one.
	Save(ctx context.Context, sctx *Context) error
	// Load rebuilds a context from its persisted snapshot.
	Load(ctx context.Context, id string) (*Context, error)
	// Delete removes a session. Deleting a missing session is not an
	// error.
	Delete(ctx context.Context, id string) error
	// List returns the stored session IDs.
	List(ctx context.Context) ([]string, error)
	Close() error
}

// MemoryStore is an in-memory Store, safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]map[string]string)}
}

func (s *MemoryStore) Save(_ context.Context, sctx *Context) error {
	snap := Snapshot(sctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[sctx.ID] = snap
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Context, error) {
	s.mu.RLock()
	snap, ok := s.snaps[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	copied := make(map[string]string, len(snap))
	for k, v := range snap {
		copied[k] = v
	}
	return RestoreContext(copied), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.snaps))
	for id := range s.snaps {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }
