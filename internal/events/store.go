package events

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const insertEventSQL = `
INSERT INTO domain_events (topic, aggregate_id, payload)
VALUES ($1, $2, $3)
RETURNING id, topic, aggregate_id, payload, occurred_at`

// PgStore persists domain events in the domain_events table.
type PgStore struct {
	Pool *pgxpool.Pool
}

func (s *PgStore) InsertDomainEvent(ctx context.Context, topic, aggregateID string, payload []byte) (Event, error) {
	var ev Event
	row := s.Pool.QueryRow(ctx, insertEventSQL, topic, aggregateID, payload)
	if err := row.Scan(&ev.ID, &ev.Topic, &ev.AggregateID, &ev.Payload, &ev.OccurredAt); err != nil {
		return Event{}, err
	}
	return ev, nil
}
