package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"callintake_backend/internal/calls/transport"
	"callintake_backend/internal/dialogue"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists call records in the calls table. Lead info and the
// conversation history are stored as jsonb so the intake schema can evolve
// without migrations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Name identifies the backend for logging.
func (s *PostgresStore) Name() string { return "postgres" }

// Save inserts the record.
func (s *PostgresStore) Save(ctx context.Context, record transport.CallRecord) error {
	leadInfo, err := json.Marshal(record.LeadInfo)
	if err != nil {
		return fmt.Errorf("marshal lead info: %w", err)
	}

	history, err := json.Marshal(record.ConversationHistory)
	if err != nil {
		return fmt.Errorf("marshal conversation history: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO calls (
			id, started_at, duration_seconds,
			emergency, emergency_detected, emergency_confidence, emergency_severity,
			escalated, outcome, lead_info, conversation_history
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		record.ID, record.Timestamp, record.DurationSeconds,
		record.Emergency, record.EmergencyDetected, record.EmergencyConfidence, record.EmergencySeverity,
		record.Escalated, record.Outcome, leadInfo, history,
	)
	if err != nil {
		return fmt.Errorf("insert call: %w", err)
	}
	return nil
}

// List returns all records, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]transport.CallRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, started_at, duration_seconds,
			emergency, emergency_detected, emergency_confidence, emergency_severity,
			escalated, outcome, lead_info, conversation_history
		FROM calls
		ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	var records []transport.CallRecord
	for rows.Next() {
		var (
			record   transport.CallRecord
			leadInfo []byte
			history  []byte
		)
		if err := rows.Scan(
			&record.ID, &record.Timestamp, &record.DurationSeconds,
			&record.Emergency, &record.EmergencyDetected, &record.EmergencyConfidence, &record.EmergencySeverity,
			&record.Escalated, &record.Outcome, &leadInfo, &history,
		); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}

		if err := json.Unmarshal(leadInfo, &record.LeadInfo); err != nil {
			return nil, fmt.Errorf("unmarshal lead info: %w", err)
		}
		if len(history) > 0 {
			var turns []dialogue.Turn
			if err := json.Unmarshal(history, &turns); err != nil {
				return nil, fmt.Errorf("unmarshal conversation history: %w", err)
			}
			record.ConversationHistory = turns
		}

		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}

	return records, nil
}

// Clear removes all records.
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM calls`); err != nil {
		return fmt.Errorf("clear calls: %w", err)
	}
	return nil
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
