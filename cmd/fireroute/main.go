package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fireroute/pkg/config"
	"fireroute/pkg/db"
	"fireroute/pkg/enrich"
	"fireroute/pkg/geo"
	"fireroute/pkg/ingest"
	"fireroute/pkg/llm"
	"fireroute/pkg/llm/factory"
	"fireroute/pkg/logging"
	"fireroute/pkg/model"
	"fireroute/pkg/pipeline"
	"fireroute/pkg/request"
	"fireroute/pkg/router"
	"fireroute/pkg/store"
	"fireroute/pkg/tracker"
	"fireroute/pkg/version"
)

var (
	initConfig   = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath   = flag.String("config", "configs/fireroute.yaml", "Path to config file")
	ticketsPath  = flag.String("tickets", "", "Tickets CSV (overrides config)")
	managersPath = flag.String("managers", "", "Managers CSV (overrides config)")
	officesPath  = flag.String("offices", "", "Offices CSV (overrides config)")
	outPath      = flag.String("out", "", "Write assignments CSV to this path")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("FIRE Route started", "version", version.Version, "llm_enabled", cfg.LLMEnabled())

	tickets, managers, offices, err := loadInputs(cfg)
	if err != nil {
		return err
	}
	slog.Info("Inputs loaded", "tickets", len(tickets), "managers", len(managers), "offices", len(offices))

	t := tracker.New()
	rc := request.New(cfg.Request, t)

	provider, err := factory.Build(cfg.LLM, rc, t)
	if err != nil {
		return fmt.Errorf("failed to build LLM provider: %w", err)
	}
	adapter := llm.NewAdapter(provider, time.Duration(cfg.LLM.Timeout))

	geoIdx := geo.NewIndex()
	enricher := enrich.New(geoIdx, adapter, cfg.Priority, t)
	rtr := router.New(geoIdx, managers, offices, cfg.Routing)

	p := pipeline.New(enricher, rtr, cfg.Pipeline.WorkerCount, t)
	result, err := p.Run(ctx, tickets)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	if *outPath != "" {
		if err := writeAssignmentsCSV(*outPath, result.Assignments); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		slog.Info("Assignments written", "path", *outPath)
	}

	if cfg.DB.Path != "" {
		if err := persistRun(ctx, cfg.DB.Path, result, t); err != nil {
			return fmt.Errorf("failed to persist run: %w", err)
		}
	}

	routing := t.Routing()
	slog.Info("Run summary",
		"run_id", result.RunID,
		"assigned", routing.Assigned,
		"redirected", routing.Redirected,
		"escalated", routing.Escalated,
		"llm_fallbacks", routing.LLMFallback,
	)
	for provider, stats := range t.Snapshot() {
		slog.Info("Provider stats", "provider", provider, "success", stats.APISuccess, "failures", stats.APIFailures)
	}

	return nil
}

func loadInputs(cfg *config.Config) ([]model.Ticket, []model.Manager, []model.Office, error) {
	tPath := firstNonEmpty(*ticketsPath, cfg.Inputs.Tickets)
	mPath := firstNonEmpty(*managersPath, cfg.Inputs.Managers)
	oPath := firstNonEmpty(*officesPath, cfg.Inputs.Offices)

	tickets, err := ingest.LoadTickets(tPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load tickets: %w", err)
	}
	managers, err := ingest.LoadManagers(mPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load managers: %w", err)
	}
	offices, err := ingest.LoadOffices(oPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load offices: %w", err)
	}
	return tickets, managers, offices, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func persistRun(ctx context.Context, path string, result *pipeline.Result, t *tracker.Tracker) error {
	dbConn, err := db.Init(path)
	if err != nil {
		return err
	}
	st := store.NewSQLiteStore(dbConn)
	defer st.Close()

	run := store.RunRecord{
		ID:          result.RunID,
		StartedAt:   time.Now().Add(-result.Elapsed),
		TicketCount: len(result.Assignments),
		Escalations: int(t.Routing().Escalated),
		ElapsedMs:   result.Elapsed.Milliseconds(),
	}
	if err := st.SaveRun(ctx, run, result.Assignments); err != nil {
		return err
	}
	slog.Info("Run persisted", "run_id", result.RunID, "path", path)
	return nil
}
