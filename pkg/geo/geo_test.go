package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestNormalise(t *testing.T) {
	idx := NewIndex()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Lowercase", "Астана", "астана"},
		{"City prefix", "г. Алматы", "алматы"},
		{"Gorod prefix", "город Шымкент", "шымкент"},
		{"English prefix", "city Almaty", "almaty"},
		{"Em dash", "Усть—Каменогорск", "усть-каменогорск"},
		{"Spaced hyphen", "Усть - Каменогорск", "усть-каменогорск"},
		{"Trash characters", "Алматы!!!", "алматы"},
		{"Collapse spaces", "  Нур   Султан  ", "нур султан"},
		{"Yo folding", "Семёновка", "семеновка"},
		{"Kazakh folding", "Өскемен", "оскемен"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := idx.Normalise(tt.in); got != tt.want {
				t.Errorf("Normalise(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGeocode(t *testing.T) {
	idx := NewIndex()

	tests := []struct {
		name   string
		city   string
		region string
		found  bool
		key    string // expected canonical key for coordinate comparison
	}{
		{"Exact", "Астана", "", true, "астана"},
		{"Exact with prefix", "г. Алматы", "", true, "алматы"},
		{"Alias latin", "Astana", "", true, "астана"},
		{"Alias historical", "Нур-Султан", "", true, "астана"},
		{"Alias Oral", "Oral", "", true, "орал"},
		{"Alias Uralsk", "Уральск", "", true, "орал"},
		{"Substring", "город Алматы мкр Самал", "", true, "алматы"},
		{"Region fallback", "Неизвестно", "Караганда", true, "караганда"},
		{"Unknown", "Хьюстон", "", false, ""},
		{"Empty", "", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := idx.Geocode(tt.city, tt.region)
			if ok != tt.found {
				t.Fatalf("Geocode(%q, %q) found = %v, want %v", tt.city, tt.region, ok, tt.found)
			}
			if tt.found && got != cityCoords[tt.key] {
				t.Errorf("Geocode(%q, %q) = %v, want %v", tt.city, tt.region, got, cityCoords[tt.key])
			}
		})
	}
}

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name string
		p1   orb.Point
		p2   orb.Point
		want float64
	}{
		{
			name: "Same point",
			p1:   orb.Point{71.4491, 51.1694},
			p2:   orb.Point{71.4491, 51.1694},
			want: 0,
		},
		{
			name: "London to Paris",
			p1:   orb.Point{-0.1278, 51.5074},
			p2:   orb.Point{2.3522, 48.8566},
			want: 344,
		},
		{
			name: "Equator 1 degree",
			p1:   orb.Point{0, 0},
			p2:   orb.Point{1, 0},
			want: 111.19,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.p1, tt.p2)
			// Allow 1% margin due to float precision
			margin := tt.want * 0.01
			if math.Abs(got-tt.want) > margin && tt.want != 0 {
				t.Errorf("DistanceKm() = %v, want %v (+/- %v)", got, tt.want, margin)
			}
		})
	}
}

func TestRankOffices(t *testing.T) {
	idx := NewIndex()

	coords := make(map[string]orb.Point)
	for _, name := range []string{"Астана", "Алматы", "Караганда"} {
		p, ok := idx.Geocode(name, "")
		if !ok {
			t.Fatalf("failed to geocode %q", name)
		}
		coords[name] = p
	}

	// From Karaganda's coordinates: itself, then Astana, then Almaty.
	origin := coords["Караганда"]
	ranked := RankOffices(origin, coords)

	if len(ranked) != 3 {
		t.Fatalf("RankOffices returned %d entries, want 3", len(ranked))
	}
	wantOrder := []string{"Караганда", "Астана", "Алматы"}
	for i, want := range wantOrder {
		if ranked[i].Name != want {
			t.Errorf("ranked[%d] = %s, want %s", i, ranked[i].Name, want)
		}
	}
	if ranked[0].Km != 0 {
		t.Errorf("distance to self = %v, want 0", ranked[0].Km)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Km < ranked[i-1].Km {
			t.Errorf("ranking not ascending at %d: %v < %v", i, ranked[i].Km, ranked[i-1].Km)
		}
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(1234.5678); got != 1234.57 {
		t.Errorf("Round2(1234.5678) = %v, want 1234.57", got)
	}
	if got := Round2(0.004); got != 0.0 {
		t.Errorf("Round2(0.004) = %v, want 0", got)
	}
}
