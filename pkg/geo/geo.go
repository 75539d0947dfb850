package geo

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/paulmach/orb"
)

// earthRadiusKm is the mean Earth radius used for Haversine distances.
const earthRadiusKm = 6371.0

// cityCoords maps normalised city names to WGS84 coordinates
// (orb.Point is lon, lat). Keys must be outputs of Normalise.
var cityCoords = map[string]orb.Point{
	// Core
	"астана":  {71.4491, 51.1694},
	"алматы":  {76.8897, 43.2389},
	"шымкент": {69.5901, 42.3417},
	"караганда": {73.0850, 49.8060},

	// East / North / West / South
	"усть-каменогорск": {82.6275, 49.9483},
	"семей":            {80.2275, 50.4111},
	"павлодар":         {76.9674, 52.2870},
	"костанай":         {63.6246, 53.2145},
	"кокшетау":         {69.3833, 53.2833},
	"петропавловск":    {69.1620, 54.8753},
	"орал":             {51.3667, 51.2333},
	"атырау":           {51.8833, 47.1167},
	"актау":            {51.1975, 43.6532},
	"актобе":           {57.1660, 50.2839},
	"тараз":            {71.3667, 42.9000},
	"кызылорда":        {65.5092, 44.8528},
}

// aliases maps alternate spellings (transliterations, historical names,
// language variants) to canonical cityCoords keys.
var aliases = map[string]string{
	// Astana variants
	"нур-султан": "астана",
	"нурсултан":  "астана",
	"nur-sultan": "астана",
	"nur sultan": "астана",
	"astana":     "астана",

	// Almaty
	"almaty": "алматы",

	// Shymkent
	"shymkent": "шымкент",

	// Oskemen / Ust-Kamenogorsk
	"oskemen":          "усть-каменогорск",
	"оскемен":          "усть-каменогорск",
	"ust-kamenogorsk":  "усть-каменогорск",
	"ust kamenogorsk":  "усть-каменогорск",
	"усть каменогорск": "усть-каменогорск",
	"устькаменогорск":  "усть-каменогорск",

	// Common latin spellings
	"karaganda":     "караганда",
	"pavlodar":      "павлодар",
	"kostanay":      "костанай",
	"kokshetau":     "кокшетау",
	"petropavlovsk": "петропавловск",
	"atyrau":        "атырау",
	"aktau":         "актау",
	"aktobe":        "актобе",
	"taraz":         "тараз",
	"kyzylorda":     "кызылорда",

	// Uralsk is the official Russian name of Oral
	"уральск": "орал",
	"oral":    "орал",
	"uralsk":  "орал",
}

var (
	prefixRe     = regexp.MustCompile(`(?i)^\s*(г\.|город|city)\s+`)
	spacesRe     = regexp.MustCompile(`\s+`)
	dashSpacesRe = regexp.MustCompile(`\s*-\s*`)
)

// kazakhFold maps Kazakh-specific letters to their closest Russian
// counterparts, reducing spelling mismatches.
var kazakhFold = strings.NewReplacer(
	"қ", "к",
	"ө", "о",
	"ү", "у",
	"ұ", "у",
	"ә", "а",
	"ң", "н",
	"ғ", "г",
	"һ", "х",
	"і", "и",
)

// Index is an offline geocoder over a static city table.
type Index struct {
	// sortedKeys keeps substring matching deterministic.
	sortedKeys []string
}

// NewIndex builds the index over the built-in city table.
func NewIndex() *Index {
	keys := make([]string, 0, len(cityCoords))
	for k := range cityCoords {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Index{sortedKeys: keys}
}

// Normalise turns a city/office name into a stable comparable key.
func (idx *Index) Normalise(text string) string {
	if text == "" {
		return ""
	}

	s := strings.ToLower(strings.TrimSpace(text))
	s = prefixRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "—", "-")
	s = strings.ReplaceAll(s, "–", "-")
	s = stripTrash(s)
	s = dashSpacesRe.ReplaceAllString(s, "-")
	s = strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
	s = strings.ReplaceAll(s, "ё", "е")
	s = kazakhFold.Replace(s)

	return s
}

// stripTrash replaces every rune outside [0-9a-z Cyrillic space hyphen]
// with a space.
func stripTrash(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9',
			r >= 'a' && r <= 'z',
			r == ' ' || r == '-',
			unicode.Is(unicode.Cyrillic, r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// Geocode resolves a city (with an optional region fallback) to
// coordinates. Lookup order: exact key, alias, conservative substring
// match in either direction.
func (idx *Index) Geocode(city, region string) (orb.Point, bool) {
	if p, ok := idx.lookup(city); ok {
		return p, true
	}
	if region != "" {
		if p, ok := idx.lookup(region); ok {
			return p, true
		}
	}
	return orb.Point{}, false
}

func (idx *Index) lookup(name string) (orb.Point, bool) {
	key := idx.Normalise(name)
	if key == "" {
		return orb.Point{}, false
	}

	if p, ok := cityCoords[key]; ok {
		return p, true
	}

	if canonical, ok := aliases[key]; ok {
		if p, ok := cityCoords[canonical]; ok {
			return p, true
		}
	}

	for _, known := range idx.sortedKeys {
		if strings.Contains(key, known) || strings.Contains(known, key) {
			return cityCoords[known], true
		}
	}

	return orb.Point{}, false
}

// DistanceKm calculates the great-circle Haversine distance between two
// points in kilometers.
func DistanceKm(p1, p2 orb.Point) float64 {
	phi1 := p1.Lat() * (math.Pi / 180.0)
	phi2 := p2.Lat() * (math.Pi / 180.0)
	dPhi := (p2.Lat() - p1.Lat()) * (math.Pi / 180.0)
	dLambda := (p2.Lon() - p1.Lon()) * (math.Pi / 180.0)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// Round2 rounds a distance to two decimals, the precision carried in
// assignments and traces.
func Round2(km float64) float64 {
	return math.Round(km*100) / 100
}

// OfficeDistance pairs an office name with its distance from a point.
type OfficeDistance struct {
	Name string
	Km   float64
}

// RankOffices orders offices with known coordinates by ascending
// distance from p. Ties break by name to keep runs deterministic.
func RankOffices(p orb.Point, coords map[string]orb.Point) []OfficeDistance {
	ranked := make([]OfficeDistance, 0, len(coords))
	for name, op := range coords {
		ranked = append(ranked, OfficeDistance{Name: name, Km: Round2(DistanceKm(p, op))})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Km != ranked[j].Km {
			return ranked[i].Km < ranked[j].Km
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}
