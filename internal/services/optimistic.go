package services

import (
	"context"
	"sync"
	"time"
)

// UpdateType classifies an in-flight client-side mutation.
type UpdateType string

const (
	UpdateCreate UpdateType = "create"
	UpdateUpdate UpdateType = "update"
	UpdateDelete UpdateType = "delete"
)

// OptimisticUpdate records one provisional mutation awaiting upstream
// confirmation. At most one entry exists per id; a newer Add for the same id
// supersedes the older entry and bumps its version.
type OptimisticUpdate struct {
	ID        string     `json:"id"`
	Type      UpdateType `json:"type"`
	Data      any        `json:"data"`
	Timestamp time.Time  `json:"timestamp"`
	Version   uint64     `json:"version"`
}

// OptimisticStore is the keyed ledger of in-flight mutations. Construct one
// per logical session scope; it is safe for concurrent handler goroutines.
type OptimisticStore struct {
	mu       sync.Mutex
	entries  map[string]OptimisticUpdate
	versions map[string]uint64
	now      func() time.Time
}

// NewOptimisticStore constructs an empty OptimisticStore.
func NewOptimisticStore() *OptimisticStore {
	return &OptimisticStore{
		entries:  make(map[string]OptimisticUpdate),
		versions: make(map[string]uint64),
		now:      time.Now,
	}
}

// Add inserts or overwrites the entry for id and returns the stored record.
func (s *OptimisticStore) Add(id string, typ UpdateType, data any) OptimisticUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.versions[id]++
	entry := OptimisticUpdate{
		ID:        id,
		Type:      typ,
		Data:      data,
		Timestamp: s.now(),
		Version:   s.versions[id],
	}
	s.entries[id] = entry
	return entry
}

// Get looks up the entry for id.
func (s *OptimisticStore) Get(id string) (OptimisticUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	return entry, ok
}

// Remove deletes the entry for id. No-op when absent.
func (s *OptimisticStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// removeVersion deletes the entry for id only while it still carries the
// given version, so a stale completion cannot clobber a newer mutation's
// provisional state.
func (s *OptimisticStore) removeVersion(id string, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[id]; ok && entry.Version == version {
		delete(s.entries, id)
	}
}

// Clear drops every entry.
func (s *OptimisticStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]OptimisticUpdate)
}

// Len returns the number of pending entries.
func (s *OptimisticStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Perform records the optimistic entry, runs the real mutation, then removes
// the entry once the mutation settles, success or failure alike. The
// mutation's error is returned untouched so the caller's own error handling
// can react; last-writer-wins is decided by version, not arrival order.
func (s *OptimisticStore) Perform(ctx context.Context, id string, typ UpdateType, data any, mutation func(ctx context.Context) error) error {
	entry := s.Add(id, typ, data)
	err := mutation(ctx)
	s.removeVersion(id, entry.Version)
	return err
}
