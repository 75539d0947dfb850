package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSONBlock removes markdown code blocks from a JSON string if present.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Look for ```json start
	start := strings.Index(text, "```json")
	if start != -1 {
		text = text[start+len("```json"):]
		end := strings.LastIndex(text, "```")
		if end != -1 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}

	// Look for generic ``` start
	start = strings.Index(text, "```")
	if start != -1 {
		text = text[start+len("```"):]
		end := strings.LastIndex(text, "```")
		if end != -1 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}

	return strings.TrimSpace(text)
}

// ExtractJSONObject returns the first {...} block of the text, or the
// text unchanged when no full object is found.
func ExtractJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return text
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	// No balanced close; hand the tail to the repair step.
	return text[start:]
}

// RepairJSON applies a bounded repair to a truncated JSON object:
// closes an unterminated string and appends a missing closing brace.
func RepairJSON(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && inString {
			i++
			continue
		}
		if c == '"' {
			inString = !inString
		}
	}
	if inString {
		s += `"`
	}
	if !strings.HasSuffix(s, "}") {
		s += "}"
	}
	return s
}

// DecodeJSON runs the tolerance transformations (fence strip, object
// extraction, bounded repair) and unmarshals into target.
func DecodeJSON(text string, target any) error {
	cleaned := CleanJSONBlock(text)
	cleaned = ExtractJSONObject(cleaned)
	cleaned = RepairJSON(cleaned)
	return json.Unmarshal([]byte(cleaned), target)
}
