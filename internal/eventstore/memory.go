package eventstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// memoryStore is an in-process Store used when no Postgres DSN is configured
// and by tests. Appends serialize on one mutex, so per-aggregate ordering is
// insertion order.
type memoryStore struct {
	mu      sync.Mutex
	records map[string][]StoredEvent
	seq     map[string]int64
}

// NewMemoryStore builds an empty in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{
		records: make(map[string][]StoredEvent),
		seq:     make(map[string]int64),
	}
}

func (s *memoryStore) Append(_ context.Context, event domain.Event) (*StoredEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := event.Email
	s.seq[key]++
	stored := StoredEvent{
		ID:           uuid.NewString(),
		AggregateKey: key,
		Type:         event.Type,
		Payload:      event,
		Sequence:     s.seq[key],
		StoredAt:     time.Now(),
	}
	s.records[key] = append(s.records[key], stored)
	return &stored, nil
}

func (s *memoryStore) FetchHistory(_ context.Context, aggregateKey string) ([]domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.records[aggregateKey]
	history := make([]domain.Event, 0, len(stored))
	for _, record := range stored {
		history = append(history, record.Payload)
	}
	return history, nil
}
