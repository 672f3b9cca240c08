package audit

import (
	"context"
	"sync"
)

// DefaultMemoryCapacity bounds the in-memory store.
const DefaultMemoryCapacity = 1000

// InMemoryStore keeps the most recent events. Used when no broker is
// configured and in tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
}

// NewInMemoryStore creates a store holding at most capacity events;
// capacity <= 0 uses DefaultMemoryCapacity.
func NewInMemoryStore(capacity int) *InMemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &InMemoryStore{capacity: capacity}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == s.capacity {
		copy(s.events, s.events[1:])
		s.events = s.events[:len(s.events)-1]
	}
	s.events = append(s.events, event)
	return nil
}

// Recent returns up to n events, newest last. n <= 0 returns all of them.
func (s *InMemoryStore) Recent(n int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if n > 0 && n < len(s.events) {
		start = len(s.events) - n
	}
	return append([]Event{}, s.events[start:]...)
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
