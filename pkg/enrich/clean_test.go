package enrich

import (
	"testing"
)

func TestCleanCity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", "Алматы", "Алматы"},
		{"Slash takes first part", "Алматы / Астана", "Алматы"},
		{"Pipe takes first part", "Астана|Караганда", "Астана"},
		{"Backslash takes first part", `Орал\Уральск`, "Орал"},
		{"Parenthetical dropped", "Нур-Султан (Астана)", "Нур-Султан"},
		{"NULL literal", "NULL", ""},
		{"nan literal", "nan", ""},
		{"none literal", "None", ""},
		{"Dash literal", "-", ""},
		{"Empty", "", ""},
		{"Whitespace", "  Шымкент  ", "Шымкент"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCity(tt.in); got != tt.want {
				t.Errorf("CleanCity(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"VIP", "VIP"},
		{"vip", "VIP"},
		{"ВИП", "VIP"},
		{"вип", "VIP"},
		{"PRIORITY", "PRIORITY"},
		{"ПРИОРИТЕТ", "PRIORITY"},
		{"PRIOR", "PRIORITY"},
		{"prior", "PRIORITY"},
		{"MASS", "MASS"},
		{"  mass ", "MASS"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeSegment(tt.in); got != tt.want {
				t.Errorf("NormalizeSegment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
