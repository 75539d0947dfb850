package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fireroute/pkg/model"
)

// writeAssignmentsCSV writes the assignment table the way downstream
// reporting expects it, one row per ticket in input order.
func writeAssignmentsCSV(path string, assignments []model.Assignment) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"guid", "ai_type", "ai_lang", "priority", "sentiment",
		"summary", "recommendation", "segment",
		"office", "office_reason", "distance_km", "manager", "trace",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range assignments {
		a := &assignments[i]

		distance := ""
		if a.DistanceKm != nil {
			distance = strconv.FormatFloat(*a.DistanceKm, 'f', 2, 64)
		}

		traceJSON, err := json.Marshal(a.Trace)
		if err != nil {
			return fmt.Errorf("failed to marshal trace for %s: %w", a.GUID, err)
		}

		row := []string{
			a.GUID,
			a.Enrichment.Category,
			a.Enrichment.Language,
			strconv.Itoa(a.Enrichment.Priority),
			a.Enrichment.Sentiment,
			a.Enrichment.Summary,
			a.Enrichment.Recommendation,
			a.Segment,
			a.Office,
			a.OfficeReason,
			distance,
			a.Manager,
			string(traceJSON),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
