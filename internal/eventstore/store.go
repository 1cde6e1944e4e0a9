package eventstore

import (
	"context"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// StoredEvent is the persisted record wrapping a domain event. The store
// assigns ID, Sequence and StoredAt; the payload is the event verbatim.
type StoredEvent struct {
	ID           string
	AggregateKey string
	Type         domain.EventType
	Payload      domain.Event
	Sequence     int64
	StoredAt     time.Time
}

// Store is the append-only persistence contract the command pipeline depends
// on. No update or delete is exposed.
//
// Append is atomic per call. It carries no expected-version check: two
// concurrent commands against the same aggregate can both read the same
// history and both append, which is an accepted limitation of this design.
// The per-aggregate Sequence keeps such interleavings ordered and
// diagnosable.
//
// FetchHistory returns every event for the aggregate in stored order
// (ascending, insertion order breaking timestamp ties). An aggregate with no
// events yields an empty history, not an error.
type Store interface {
	Append(ctx context.Context, event domain.Event) (*StoredEvent, error)
	FetchHistory(ctx context.Context, aggregateKey string) ([]domain.Event, error)
}
