package enrich

import (
	"regexp"
	"strings"
)

var (
	citySplitRe   = regexp.MustCompile(`[/|\\]`)
	parentheticRe = regexp.MustCompile(`\(.*?\)`)
)

// nullLiterals are string values treated as absent input.
var nullLiterals = map[string]bool{
	"null": true, "nan": true, "none": true, "-": true, "": true,
}

// CleanCity normalises messy city strings:
// "Алматы / Астана" → "Алматы", "Нур-Султан (Астана)" → "Нур-Султан",
// "NULL"/"nan" → "".
func CleanCity(raw string) string {
	s := strings.TrimSpace(raw)
	if nullLiterals[strings.ToLower(s)] {
		return ""
	}
	s = strings.TrimSpace(citySplitRe.Split(s, 2)[0])
	s = strings.TrimSpace(parentheticRe.ReplaceAllString(s, ""))
	return s
}

// segmentAliases map localized segment spellings to canonical tokens.
var segmentAliases = map[string]string{
	"ВИП":       "VIP",
	"ПРИОРИТЕТ": "PRIORITY",
	"PRIOR":     "PRIORITY",
}

// NormalizeSegment uppercases the segment and folds known variants.
func NormalizeSegment(segment string) string {
	s := strings.ToUpper(strings.TrimSpace(segment))
	if canonical, ok := segmentAliases[s]; ok {
		return canonical
	}
	return s
}
