package store

import (
	"context"
	"time"

	"fireroute/pkg/model"
)

// RunRecord summarises one pipeline run.
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	TicketCount int
	Escalations int
	ElapsedMs   int64
}

// AssignmentStore persists pipeline results. The routing core never
// touches it; the entrypoint wires it in after a run completes.
type AssignmentStore interface {
	SaveRun(ctx context.Context, run RunRecord, assignments []model.Assignment) error
	GetRun(ctx context.Context, runID string) (*RunRecord, error)
	GetAssignments(ctx context.Context, runID string) ([]model.Assignment, error)
}

// Store composes all sub-interfaces for full store access.
type Store interface {
	AssignmentStore

	// Close closes the store connection.
	Close() error
}
