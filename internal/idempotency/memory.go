package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps delivery markers in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	markers map[string]time.Time
}

// NewMemoryStore creates an empty marker store. A zero ttl keeps markers
// forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, markers: make(map[string]time.Time)}
}

func (s *MemoryStore) Seen(_ context.Context, intentID uuid.UUID, connectionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Key(intentID, connectionID)
	at, ok := s.markers[key]
	if !ok {
		return false, nil
	}
	if s.ttl > 0 && s.now().Sub(at) >= s.ttl {
		delete(s.markers, key)
		return false, nil
	}

	return true, nil
}

func (s *MemoryStore) Mark(_ context.Context, intentID uuid.UUID, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.markers[Key(intentID, connectionID)] = s.now()

	return nil
}
