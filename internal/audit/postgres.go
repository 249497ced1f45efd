package audit

import (
	"context"
	"database/sql"
	"fmt"
)

const createAuditTable = `
	CREATE TABLE IF NOT EXISTS assessment_audit (
		id                 UUID PRIMARY KEY,
		timestamp          TIMESTAMPTZ NOT NULL,
		request_id         TEXT NOT NULL DEFAULT '',
		subject            TEXT NOT NULL DEFAULT '',
		action             TEXT NOT NULL,
		risk_tier          TEXT NOT NULL DEFAULT '',
		death_probability  DOUBLE PRECISION NOT NULL DEFAULT 0,
		contract_verified  BOOLEAN NOT NULL DEFAULT FALSE,
		attribution_status TEXT NOT NULL DEFAULT '',
		error              TEXT NOT NULL DEFAULT ''
	)
`

// PostgresStore writes events to the assessment_audit table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the audit table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createAuditTable); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

// Append inserts the event. Duplicate IDs are ignored.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO assessment_audit (
			id, timestamp, request_id, subject, action, risk_tier,
			death_probability, contract_verified, attribution_status, error
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		event.RequestID,
		event.Subject,
		string(event.Action),
		event.RiskTier,
		event.DeathProbability,
		event.ContractVerified,
		event.AttributionStatus,
		event.Error,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns up to limit events, newest first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	query := `
		SELECT id, timestamp, request_id, subject, action, risk_tier,
		       death_probability, contract_verified, attribution_status, error
		FROM assessment_audit
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e      Event
			action string
		)
		if err := rows.Scan(
			&e.ID,
			&e.Timestamp,
			&e.RequestID,
			&e.Subject,
			&action,
			&e.RiskTier,
			&e.DeathProbability,
			&e.ContractVerified,
			&e.AttributionStatus,
			&e.Error,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = Action(action)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
