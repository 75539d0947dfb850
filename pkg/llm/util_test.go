package llm

import (
	"testing"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "Plain JSON",
			in:   `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "JSON fence",
			in:   "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "Generic fence",
			in:   "```\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "Fence with prose before",
			in:   "Here is the result:\n```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "Whitespace trimmed",
			in:   "  {\"a\": 1}  ",
			want: `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanJSONBlock(tt.in); got != tt.want {
				t.Errorf("CleanJSONBlock(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "Object with prose around",
			in:   `The answer is {"a": 1} as requested.`,
			want: `{"a": 1}`,
		},
		{
			name: "Nested object",
			in:   `x {"a": {"b": 2}} y`,
			want: `{"a": {"b": 2}}`,
		},
		{
			name: "Braces inside strings ignored",
			in:   `{"a": "}{"} trailing`,
			want: `{"a": "}{"}`,
		},
		{
			name: "Unbalanced returns tail for repair",
			in:   `text {"a": 1`,
			want: `{"a": 1`,
		},
		{
			name: "No object",
			in:   `no json here`,
			want: `no json here`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSONObject(tt.in); got != tt.want {
				t.Errorf("ExtractJSONObject(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "Complete object untouched",
			in:   `{"a": "b"}`,
			want: `{"a": "b"}`,
		},
		{
			name: "Missing brace appended",
			in:   `{"a": "b"`,
			want: `{"a": "b"}`,
		},
		{
			name: "Unterminated string closed",
			in:   `{"a": "b`,
			want: `{"a": "b"}`,
		},
		{
			name: "Escaped quote not counted",
			in:   `{"a": "b\"c"}`,
			want: `{"a": "b\"c"}`,
		},
		{
			name: "Empty stays empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RepairJSON(tt.in); got != tt.want {
				t.Errorf("RepairJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Summary        string `json:"summary"`
		Recommendation string `json:"recommendation"`
	}

	// Fenced, prose-wrapped, truncated output all at once.
	raw := "Вот результат:\n```json\n{\"summary\": \"Клиент не может войти\", \"recommendation\": \"Сбросить пароль"

	if err := DecodeJSON(raw, &target); err != nil {
		t.Fatalf("DecodeJSON failed: %v", err)
	}
	if target.Summary != "Клиент не может войти" {
		t.Errorf("summary = %q", target.Summary)
	}
	if target.Recommendation != "Сбросить пароль" {
		t.Errorf("recommendation = %q", target.Recommendation)
	}
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	var target struct{}
	if err := DecodeJSON("absolutely not json", &target); err == nil {
		t.Error("expected error for non-JSON input")
	}
}
