// Package ingest reads tickets, managers, and offices from tabular
// files. All string coercion happens here, once: header aliasing,
// NULL/nan folding, city and segment cleaning, load parsing.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fireroute/pkg/enrich"
	"fireroute/pkg/model"
)

// Header alias maps fold the localized CSV headers the corpus ships
// with into canonical field names.
var ticketHeaderAliases = map[string]string{
	"guid клиента":      "guid",
	"client_guid":       "guid",
	"id":                "guid",
	"текст обращения":   "text",
	"обращение":         "text",
	"населенный пункт":  "city",
	"город":             "city",
	"страна":            "country",
	"сегмент клиента":   "segment",
	"сегмент":           "segment",
	"область":           "region",
}

var managerHeaderAliases = map[string]string{
	"фио":                            "name",
	"менеджер":                       "name",
	"должность":                      "position",
	"навыки":                         "skills",
	"офис":                           "office",
	"бизнес-единица":                 "office",
	"количество обращений в работе":  "load",
	"кол-во обращений в работе":      "load",
	"нагрузка":                       "load",
}

var officeHeaderAliases = map[string]string{
	"офис":           "office",
	"бизнес-единица": "office",
	"unit":           "office",
	"адрес":          "address",
}

// LoadTickets reads tickets from a CSV file.
func LoadTickets(path string) ([]model.Ticket, error) {
	rows, err := readCSV(path, ticketHeaderAliases)
	if err != nil {
		return nil, fmt.Errorf("tickets: %w", err)
	}
	if err := requireColumns(rows, "guid", "city", "country", "segment"); err != nil {
		return nil, fmt.Errorf("tickets: %w", err)
	}

	tickets := make([]model.Ticket, 0, len(rows.records))
	for _, rec := range rows.records {
		t := model.Ticket{
			GUID:    strings.TrimSpace(rows.get(rec, "guid")),
			Text:    rows.get(rec, "text"),
			City:    enrich.CleanCity(rows.get(rec, "city")),
			Region:  cleanString(rows.get(rec, "region")),
			Country: cleanString(rows.get(rec, "country")),
			Segment: enrich.NormalizeSegment(rows.get(rec, "segment")),
		}
		if lat, ok := parseFloat(rows.get(rec, "lat")); ok {
			if lon, ok := parseFloat(rows.get(rec, "lon")); ok {
				t.Lat, t.Lon = &lat, &lon
			}
		}
		tickets = append(tickets, t)
	}
	return tickets, nil
}

// LoadManagers reads managers from a CSV file.
func LoadManagers(path string) ([]model.Manager, error) {
	rows, err := readCSV(path, managerHeaderAliases)
	if err != nil {
		return nil, fmt.Errorf("managers: %w", err)
	}
	if err := requireColumns(rows, "name", "position", "skills", "office", "load"); err != nil {
		return nil, fmt.Errorf("managers: %w", err)
	}

	managers := make([]model.Manager, 0, len(rows.records))
	for _, rec := range rows.records {
		m := model.Manager{
			Name:     strings.TrimSpace(rows.get(rec, "name")),
			Position: strings.TrimSpace(rows.get(rec, "position")),
			Office:   strings.TrimSpace(rows.get(rec, "office")),
			Skills:   ParseSkills(rows.get(rec, "skills")),
		}
		// Corrupt loads coerce to zero.
		if load, ok := parseInt(rows.get(rec, "load")); ok && load > 0 {
			m.Load = load
		}
		managers = append(managers, m)
	}
	return managers, nil
}

// LoadOffices reads offices from a CSV file.
func LoadOffices(path string) ([]model.Office, error) {
	rows, err := readCSV(path, officeHeaderAliases)
	if err != nil {
		return nil, fmt.Errorf("offices: %w", err)
	}
	if err := requireColumns(rows, "office"); err != nil {
		return nil, fmt.Errorf("offices: %w", err)
	}

	offices := make([]model.Office, 0, len(rows.records))
	for _, rec := range rows.records {
		o := model.Office{
			Name:    strings.TrimSpace(rows.get(rec, "office")),
			Address: cleanString(rows.get(rec, "address")),
		}
		if lat, ok := parseFloat(rows.get(rec, "lat")); ok {
			if lon, ok := parseFloat(rows.get(rec, "lon")); ok {
				o.Lat, o.Lon = &lat, &lon
			}
		}
		offices = append(offices, o)
	}
	return offices, nil
}

// ParseSkills splits a semicolon/comma-separated skill list into
// uppercased tokens.
func ParseSkills(value string) map[string]bool {
	skills := make(map[string]bool)
	value = strings.ReplaceAll(value, ";", ",")
	for _, part := range strings.Split(value, ",") {
		token := strings.ToUpper(strings.TrimSpace(part))
		if token != "" {
			skills[token] = true
		}
	}
	return skills
}

// table is a parsed CSV with canonicalised headers.
type table struct {
	columns map[string]int
	records [][]string
}

func (t *table) get(rec []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func readCSV(path string, aliases map[string]string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		name := canonicalHeader(h, aliases)
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}

	t := &table{columns: columns}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		t.records = append(t.records, rec)
	}
	return t, nil
}

func canonicalHeader(h string, aliases map[string]string) string {
	name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	name = strings.ReplaceAll(name, "ё", "е")
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

func requireColumns(t *table, names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := t.columns[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// cleanString folds NULL-ish literals to empty.
func cleanString(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "null", "nan", "none", "-":
		return ""
	}
	return s
}

func parseFloat(s string) (float64, bool) {
	s = cleanString(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseInt(s string) (int, bool) {
	s = cleanString(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	// Some exports carry loads as floats ("3.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), true
	}
	return 0, false
}
