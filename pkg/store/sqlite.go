package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"fireroute/pkg/db"
	"fireroute/pkg/model"
)

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun writes the run record and all its assignments in one
// transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run RunRecord, assignments []model.Assignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, ticket_count, escalations, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.TicketCount, run.Escalations, run.ElapsedMs,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assignments (run_id, position, guid, category, language, sentiment,
		 priority, summary, recommendation, segment, office, office_reason, distance_km, manager, trace)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range assignments {
		a := &assignments[i]

		traceJSON, err := json.Marshal(a.Trace)
		if err != nil {
			return fmt.Errorf("failed to marshal trace: %w", err)
		}

		var distance sql.NullFloat64
		if a.DistanceKm != nil {
			distance = sql.NullFloat64{Float64: *a.DistanceKm, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			run.ID, i, a.GUID,
			a.Enrichment.Category, a.Enrichment.Language, a.Enrichment.Sentiment,
			a.Enrichment.Priority, a.Enrichment.Summary, a.Enrichment.Recommendation,
			a.Segment, a.Office, a.OfficeReason, distance, a.Manager, string(traceJSON),
		); err != nil {
			return fmt.Errorf("failed to insert assignment %s: %w", a.GUID, err)
		}
	}

	return tx.Commit()
}

// GetRun fetches one run record. Returns nil when not found.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, ticket_count, escalations, elapsed_ms FROM runs WHERE id = ?`, runID)

	var r RunRecord
	err := row.Scan(&r.ID, &r.StartedAt, &r.TicketCount, &r.Escalations, &r.ElapsedMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// GetAssignments fetches the assignments of a run in input order.
func (s *SQLiteStore) GetAssignments(ctx context.Context, runID string) ([]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT guid, category, language, sentiment, priority, summary, recommendation,
		 segment, office, office_reason, distance_km, manager, trace
		 FROM assignments WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Assignment
	for rows.Next() {
		var a model.Assignment
		var distance sql.NullFloat64
		var traceJSON string

		if err := rows.Scan(
			&a.GUID, &a.Enrichment.Category, &a.Enrichment.Language, &a.Enrichment.Sentiment,
			&a.Enrichment.Priority, &a.Enrichment.Summary, &a.Enrichment.Recommendation,
			&a.Segment, &a.Office, &a.OfficeReason, &distance, &a.Manager, &traceJSON,
		); err != nil {
			return nil, err
		}

		if distance.Valid {
			d := distance.Float64
			a.DistanceKm = &d
		}
		if err := json.Unmarshal([]byte(traceJSON), &a.Trace); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trace for %s: %w", a.GUID, err)
		}

		out = append(out, a)
	}
	return out, rows.Err()
}
