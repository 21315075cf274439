package cache

import (
	"context"
	"time"

	"github.com/wms/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore keeps processed event IDs in process memory.
// It does not share state across instances; use Redis when running more than one.
type InMemoryIdempotencyStore struct {
	entries *ttlMap[struct{}]
	janitor *janitor
}

// NewInMemoryIdempotencyStore creates the store and starts its cleanup loop
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	entries := newTTLMap[struct{}]()
	return &InMemoryIdempotencyStore{
		entries: entries,
		janitor: startJanitor(5*time.Minute, entries.sweep),
	}
}

// MarkProcessed returns true if eventID was newly marked
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	return s.entries.setNX(eventID, struct{}{}, ttl), nil
}

// IsProcessed checks if an event has already been processed
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	_, ok := s.entries.get(eventID)
	return ok, nil
}

// Close stops the cleanup loop. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.janitor.close()
	return nil
}

// Size returns the number of stored entries, expired ones included until swept
func (s *InMemoryIdempotencyStore) Size() int {
	return s.entries.len()
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
