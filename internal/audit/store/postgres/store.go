// Package postgres implements the mirror sink with the transactional
// outbox pattern: events land in the outbox table and a relay ships them
// to the aggregator's broker. Register a database/sql driver (lib/pq) in
// the binary that opens the pool.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"cultiva/internal/audit"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Schema for the outbox table. Applied by the operator or test setup; the
// store itself never runs DDL.
const Schema = `
CREATE TABLE IF NOT EXISTS audit_outbox (
	id          TEXT PRIMARY KEY,
	farm_id     BIGINT NOT NULL,
	entry_id    INT NOT NULL,
	event_type  TEXT NOT NULL,
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	relayed_at  TIMESTAMPTZ
);
`

// Append writes one mirror event to the outbox.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal mirror event: %w", err)
	}

	query := `
		INSERT INTO audit_outbox (id, farm_id, entry_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		uint64(event.FarmID),
		event.EntryID,
		event.Action,
		payload,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// Pending returns up to limit unrelayed events, oldest first.
func (s *Store) Pending(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM audit_outbox
		WHERE relayed_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		var event audit.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("unmarshal outbox payload: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// MarkRelayed stamps events as shipped.
func (s *Store) MarkRelayed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE audit_outbox SET relayed_at = NOW() WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("mark outbox relayed: %w", err)
	}
	return nil
}
