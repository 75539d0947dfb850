package router

import (
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/paulmach/orb"

	"fireroute/pkg/config"
	"fireroute/pkg/geo"
	"fireroute/pkg/model"
)

// chiefPositionPatterns mark a manager as chief when the normalised
// position starts with or contains any of them.
var chiefPositionPatterns = []string{
	"глав",
	"chief",
	"гл. спец",
	"гл спец",
}

// escalationNoHomeManager is recorded when the home office pool empties
// and the fallback ladder starts.
const escalationNoHomeManager = "no_suitable_manager_in_home_office"

// rrKey indexes round-robin counters. It intentionally excludes
// category and segment: finer keys create many near-empty counters and
// destroy rotation.
type rrKey struct {
	office   string
	language string
}

// Router assigns enriched tickets to managers. Not safe for concurrent
// use: manager loads and round-robin counters are mutated on every
// Route call and must stay single-threaded.
type Router struct {
	geoIdx   *geo.Index
	managers []*model.Manager
	byOffice map[string][]*model.Manager
	offices  []model.Office

	officeCoords map[string]orb.Point
	capitals     [2]string

	rrCounters      map[rrKey]int
	unknownLocCount int
	spreadThreshold int
}

// New creates a Router over the given managers and offices.
// Managers are deduplicated by name (first occurrence wins) and
// corrupt loads are coerced to zero.
func New(geoIdx *geo.Index, managers []model.Manager, offices []model.Office, cfg config.RoutingConfig) *Router {
	r := &Router{
		geoIdx:          geoIdx,
		byOffice:        make(map[string][]*model.Manager),
		offices:         offices,
		officeCoords:    make(map[string]orb.Point),
		rrCounters:      make(map[rrKey]int),
		spreadThreshold: cfg.RRSpreadThreshold,
	}
	if r.spreadThreshold <= 0 {
		r.spreadThreshold = 3
	}

	r.prepareManagers(managers)
	r.cacheOfficeCoords()
	r.resolveCapitals(cfg.FallbackCapitals)

	return r
}

func (r *Router) prepareManagers(managers []model.Manager) {
	seen := make(map[string]bool)
	for i := range managers {
		m := managers[i] // copy; loads are mutated privately
		m.Name = strings.TrimSpace(m.Name)
		m.Office = strings.TrimSpace(m.Office)

		if seen[m.Name] {
			slog.Warn("Duplicate manager name, keeping first occurrence", "name", m.Name)
			continue
		}
		seen[m.Name] = true

		if m.Load < 0 {
			m.Load = 0
		}
		if m.Skills == nil {
			m.Skills = make(map[string]bool)
		}
		m.Chief = isChief(normalizePosition(m.Position))

		mp := &m
		r.managers = append(r.managers, mp)
		r.byOffice[m.Office] = append(r.byOffice[m.Office], mp)
	}
}

func (r *Router) cacheOfficeCoords() {
	for _, off := range r.offices {
		if off.Lat != nil && off.Lon != nil {
			r.officeCoords[off.Name] = orb.Point{*off.Lon, *off.Lat}
			continue
		}
		if p, ok := r.geoIdx.Geocode(off.Name, ""); ok {
			r.officeCoords[off.Name] = p
		}
	}
}

func (r *Router) resolveCapitals(patterns []string) {
	for i := 0; i < 2; i++ {
		pattern := ""
		if i < len(patterns) {
			pattern = strings.ToLower(patterns[i])
		}
		r.capitals[i] = r.findOffice(pattern)
	}
}

// findOffice returns the first office whose lowered name contains the
// pattern, or the capitalized pattern itself when no office matches.
func (r *Router) findOffice(pattern string) string {
	for _, off := range r.offices {
		if pattern != "" && strings.Contains(strings.ToLower(off.Name), pattern) {
			return off.Name
		}
	}
	return capitalize(pattern)
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// normalizePosition folds a position title into a comparable form.
func normalizePosition(position string) string {
	s := strings.ToLower(position)
	s = strings.ReplaceAll(s, "ё", "е")
	s = strings.ReplaceAll(s, "специалист", "спец")
	return strings.TrimSpace(s)
}

func isChief(posNorm string) bool {
	for _, p := range chiefPositionPatterns {
		if strings.HasPrefix(posNorm, p) || strings.Contains(posNorm, p) {
			return true
		}
	}
	return false
}

// Managers returns a snapshot of the managers with their current loads.
func (r *Router) Managers() []model.Manager {
	out := make([]model.Manager, len(r.managers))
	for i, m := range r.managers {
		out[i] = *m
	}
	return out
}

// Route assigns one enriched ticket. Exactly one assignment is always
// produced; the only failure surface is the escalation sentinel.
func (r *Router) Route(t *model.Ticket, enr *model.Enrichment) model.Assignment {
	start := time.Now()

	segment := t.Segment
	office, reason, distKm := r.homeOffice(t)

	pool := r.byOffice[office]
	trace := model.Trace{
		HomeOffice:   office,
		OfficeReason: reason,
		DistanceKm:   distKm,
		InitialPool:  len(pool),
	}

	subset := r.applyFilters(pool, segment, enr.Category, enr.Language, &trace)

	if len(subset) > 0 {
		selected, top2, counter := r.selectManager(subset, rrKey{office, enr.Language})
		trace.Selected = selected.Name
		trace.Top2 = top2
		trace.RRCounter = counter
		trace.RoutingMs = time.Since(start).Milliseconds()

		return model.Assignment{
			GUID:         t.GUID,
			Enrichment:   *enr,
			Segment:      segment,
			Office:       office,
			OfficeReason: reason,
			DistanceKm:   distKm,
			Manager:      selected.Name,
			Trace:        trace,
		}
	}

	// No suitable manager in the home office: search nearby.
	trace.EscalationReason = escalationNoHomeManager
	nearMgr, nearOffice, nearDist := r.findNearestManager(t, office, segment, enr.Category, enr.Language)

	if nearMgr != nil {
		trace.Selected = nearMgr.Name
		trace.RedirectedOffice = nearOffice
		trace.RedirectedKm = nearDist
		trace.RoutingMs = time.Since(start).Milliseconds()

		return model.Assignment{
			GUID:         t.GUID,
			Enrichment:   *enr,
			Segment:      segment,
			Office:       nearOffice,
			OfficeReason: model.ReasonNearestOffice,
			DistanceKm:   nearDist,
			Manager:      nearMgr.Name,
			Trace:        trace,
		}
	}

	trace.Escalation = true
	trace.Selected = model.EscalationSentinel
	trace.RoutingMs = time.Since(start).Milliseconds()

	return model.Assignment{
		GUID:         t.GUID,
		Enrichment:   *enr,
		Segment:      segment,
		Office:       office,
		OfficeReason: reason,
		DistanceKm:   distKm,
		Manager:      model.EscalationSentinel,
		Trace:        trace,
	}
}

// homeOffice decides the home office from ticket geography alone.
func (r *Router) homeOffice(t *model.Ticket) (office, reason string, distKm *float64) {
	country := strings.ToLower(strings.TrimSpace(t.Country))

	// 1. Explicit coords in ticket
	if t.HasCoords() {
		if nearest, dist, ok := r.nearestOffice(orb.Point{*t.Lon, *t.Lat}, ""); ok {
			return nearest, model.ReasonByCoords, &dist
		}
	}

	// 2. Geocode city (with region fallback inside the index)
	if p, ok := r.geoIdx.Geocode(t.City, t.Region); ok {
		if nearest, dist, ok := r.nearestOffice(p, ""); ok {
			return nearest, model.ReasonByDistance, &dist
		}
	}

	// 3. Substring match city vs office names
	cityNorm := r.geoIdx.Normalise(t.City)
	if cityNorm != "" {
		for _, off := range r.offices {
			offNorm := r.geoIdx.Normalise(off.Name)
			if offNorm == "" {
				continue
			}
			if strings.Contains(cityNorm, offNorm) || strings.Contains(offNorm, cityNorm) {
				return off.Name, model.ReasonByMatch, nil
			}
		}
	}

	// 4. Clearly non-domestic country: alternate between the capitals
	isDomestic := strings.Contains(country, "kaz") || strings.Contains(country, "каз")
	isUnknown := country == "" || country == "nan" || country == "none"
	if !isDomestic && !isUnknown {
		office := r.capitals[r.unknownLocCount%2]
		r.unknownLocCount++
		return office, model.Reason5050, nil
	}

	// 5. Default
	return r.capitals[0], model.ReasonDefault, nil
}

// nearestOffice returns the closest office with known coordinates,
// excluding the named office when exclude is non-empty.
func (r *Router) nearestOffice(p orb.Point, exclude string) (string, float64, bool) {
	for _, od := range geo.RankOffices(p, r.officeCoords) {
		if od.Name == exclude {
			continue
		}
		return od.Name, od.Km, true
	}
	return "", 0, false
}

// applyFilters applies the three required filters, recording pool sizes
// in the trace for each filter that fired.
func (r *Router) applyFilters(pool []*model.Manager, segment, category, language string, trace *model.Trace) []*model.Manager {
	subset := pool

	if model.IsVIPSegment(segment) {
		subset = filterManagers(subset, hasVIPSkill)
		if trace != nil {
			n := len(subset)
			trace.AfterVIP = &n
		}
	}
	if category == model.CategoryDataChange {
		subset = filterManagers(subset, isChiefManager)
		if trace != nil {
			n := len(subset)
			trace.AfterChief = &n
		}
	}
	if language == model.LangKZ || language == model.LangEN {
		subset = filterManagers(subset, hasLangSkill(language))
		if trace != nil {
			n := len(subset)
			trace.AfterLang = &n
		}
	}

	return subset
}

func filterManagers(pool []*model.Manager, keep func(*model.Manager) bool) []*model.Manager {
	out := make([]*model.Manager, 0, len(pool))
	for _, m := range pool {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func hasVIPSkill(m *model.Manager) bool { return m.HasSkill(model.SegmentVIP) }
func isChiefManager(m *model.Manager) bool { return m.Chief }

func hasLangSkill(language string) func(*model.Manager) bool {
	return func(m *model.Manager) bool { return m.HasSkill(language) }
}

// selectManager picks from a non-empty candidate set using weighted
// round-robin: when the load spread exceeds the threshold the least
// loaded always wins, otherwise rotation alternates over the top two.
// The chosen manager's load is incremented.
func (r *Router) selectManager(candidates []*model.Manager, key rrKey) (selected *model.Manager, top2 []string, counterUsed *int) {
	sorted := make([]*model.Manager, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Load != sorted[j].Load {
			return sorted[i].Load < sorted[j].Load
		}
		return sorted[i].Name < sorted[j].Name
	})

	minLoad := sorted[0].Load
	maxLoad := sorted[len(sorted)-1].Load

	if len(sorted) > 1 && maxLoad-minLoad > r.spreadThreshold {
		// Large spread: always take the least loaded.
		selected = sorted[0]
	} else {
		top := sorted
		if len(top) > 2 {
			top = top[:2]
		}
		// Rotation indexes the pair in name order so that alternation
		// survives the load increments the rotation itself causes.
		rotation := make([]*model.Manager, len(top))
		copy(rotation, top)
		sort.Slice(rotation, func(i, j int) bool {
			return rotation[i].Name < rotation[j].Name
		})
		idx := r.rrCounters[key]
		selected = rotation[idx%len(rotation)]
		r.rrCounters[key] = idx + 1
		counterUsed = &idx
	}

	top2 = make([]string, 0, 2)
	for i := 0; i < len(sorted) && i < 2; i++ {
		top2 = append(top2, sorted[i].Name)
	}

	selected.Load++
	return selected, top2, counterUsed
}

// ticketCoords resolves the coordinates used for the fallback ladder:
// explicit ticket coordinates, else the geocoded city/region.
func (r *Router) ticketCoords(t *model.Ticket) (orb.Point, bool) {
	if t.HasCoords() {
		return orb.Point{*t.Lon, *t.Lat}, true
	}
	return r.geoIdx.Geocode(t.City, t.Region)
}

// findNearestManager walks offices in ascending distance, running each
// relaxation pass across all offices before moving to a more lenient
// pass. Without coordinates the two capitals serve as fallback offices.
func (r *Router) findNearestManager(t *model.Ticket, currentOffice, segment, category, language string) (*model.Manager, string, *float64) {
	passes := r.filterPasses(segment, category, language)

	p, ok := r.ticketCoords(t)
	if !ok {
		for _, fallbackOff := range r.capitals {
			if fallbackOff == currentOffice {
				continue
			}
			pool := r.byOffice[fallbackOff]
			for _, pass := range passes {
				sub := pass(pool)
				if len(sub) > 0 {
					sel, _, _ := r.selectManager(sub, rrKey{fallbackOff, language})
					return sel, fallbackOff, nil
				}
			}
		}
		return nil, "", nil
	}

	ranked := geo.RankOffices(p, r.officeCoords)

	for _, pass := range passes {
		for _, od := range ranked {
			if od.Name == currentOffice {
				continue
			}
			sub := pass(r.byOffice[od.Name])
			if len(sub) > 0 {
				sel, _, _ := r.selectManager(sub, rrKey{od.Name, language})
				dist := od.Km
				return sel, od.Name, &dist
			}
		}
	}

	return nil, "", nil
}

// filterPasses builds the relaxation ladder from strictest to most
// lenient. Each pass is a conjunction of the same three predicates.
func (r *Router) filterPasses(segment, category, language string) []func([]*model.Manager) []*model.Manager {
	vipRequired := model.IsVIPSegment(segment)
	chiefRequired := category == model.CategoryDataChange
	langRequired := language == model.LangKZ || language == model.LangEN

	full := func(pool []*model.Manager) []*model.Manager {
		return r.applyFilters(pool, segment, category, language, nil)
	}

	noLang := func(pool []*model.Manager) []*model.Manager {
		sub := pool
		if vipRequired {
			sub = filterManagers(sub, hasVIPSkill)
		}
		if chiefRequired {
			sub = filterManagers(sub, isChiefManager)
		}
		return sub
	}

	vipOnly := func(pool []*model.Manager) []*model.Manager {
		return filterManagers(pool, hasVIPSkill)
	}

	anyManager := func(pool []*model.Manager) []*model.Manager {
		return pool
	}

	passes := []func([]*model.Manager) []*model.Manager{full}
	if langRequired {
		passes = append(passes, noLang)
	}
	if vipRequired {
		passes = append(passes, vipOnly)
	}
	passes = append(passes, anyManager)

	return passes
}
