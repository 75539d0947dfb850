package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fireroute/pkg/enrich"
	"fireroute/pkg/model"
	"fireroute/pkg/router"
	"fireroute/pkg/tracker"
)

// Result holds the outcome of one pipeline run. Assignments preserve
// ticket input order.
type Result struct {
	RunID       string
	Assignments []model.Assignment
	Elapsed     time.Duration
}

// Pipeline drives enrichment with bounded concurrency and feeds the
// router strictly sequentially afterwards, keeping manager-load and
// round-robin mutations single-threaded.
type Pipeline struct {
	enricher *enrich.Enricher
	router   *router.Router
	workers  int
	tracker  *tracker.Tracker
}

// New creates a Pipeline.
func New(e *enrich.Enricher, r *router.Router, workers int, t *tracker.Tracker) *Pipeline {
	if workers <= 0 {
		workers = 20
	}
	return &Pipeline{
		enricher: e,
		router:   r,
		workers:  workers,
		tracker:  t,
	}
}

// Run processes all tickets: parallel enrichment, then sequential
// routing. Cancelling the context aborts pending enrichment and
// discards completed work.
func (p *Pipeline) Run(ctx context.Context, tickets []model.Ticket) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	slog.Info("Pipeline run started", "run_id", runID, "tickets", len(tickets), "workers", p.workers)

	enrichments := make([]model.Enrichment, len(tickets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range tickets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Each worker writes to its own slot; no shared state.
			enrichments[i] = p.enricher.Enrich(gctx, &tickets[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Routing phase: strictly single-threaded.
	assignments := make([]model.Assignment, len(tickets))
	for i := range tickets {
		assignments[i] = p.router.Route(&tickets[i], &enrichments[i])
		if p.tracker != nil {
			a := &assignments[i]
			switch {
			case a.Escalated():
				p.tracker.TrackEscalated()
			case a.OfficeReason == model.ReasonNearestOffice:
				p.tracker.TrackRedirected()
				p.tracker.TrackAssigned()
			default:
				p.tracker.TrackAssigned()
			}
		}
	}

	elapsed := time.Since(start)
	slog.Info("Pipeline run finished", "run_id", runID, "assignments", len(assignments), "elapsed", elapsed)

	return &Result{
		RunID:       runID,
		Assignments: assignments,
		Elapsed:     elapsed,
	}, nil
}
