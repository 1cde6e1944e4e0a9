package eventstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore builds a Store backed by the events table.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Append(ctx context.Context, event domain.Event) (*StoredEvent, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	stored := &StoredEvent{
		ID:           uuid.NewString(),
		AggregateKey: event.Email,
		Type:         event.Type,
		Payload:      event,
	}

	const query = `
        INSERT INTO events (id, aggregate_key, event_type, payload, sequence)
        SELECT $1, $2, $3, $4, COALESCE(MAX(sequence), 0) + 1
        FROM events WHERE aggregate_key = $2
        RETURNING sequence, stored_at`
	if err := s.pool.QueryRow(ctx, query,
		stored.ID,
		stored.AggregateKey,
		stored.Type,
		payload,
	).Scan(&stored.Sequence, &stored.StoredAt); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *postgresStore) FetchHistory(ctx context.Context, aggregateKey string) ([]domain.Event, error) {
	const query = `
        SELECT payload FROM events
        WHERE aggregate_key = $1
        ORDER BY sequence ASC`
	rows, err := s.pool.Query(ctx, query, aggregateKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	history := []domain.Event{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var event domain.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("unmarshal event: %w", err)
		}
		history = append(history, event)
	}
	return history, rows.Err()
}
