package summary

import (
	"regexp"
	"strings"

	"fireroute/pkg/model"
)

const (
	maxSummaryLen  = 300
	minSentenceLen = 10 // ignore very short fragments
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`[.!?]`)
)

// Summarizer extracts a concise summary from raw ticket text.
// Deterministic: no randomness, no external calls.
type Summarizer struct{}

// NewSummarizer creates a Summarizer.
func NewSummarizer() *Summarizer {
	return &Summarizer{}
}

// Summarize returns a short summary of text, capped at 300 characters.
// Strategy: normalise whitespace, split into sentences, keep the first
// one or two meaningful ones, truncate.
func (s *Summarizer) Summarize(text string) string {
	cleaned := strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))

	var meaningful []string
	for _, part := range splitSentences(cleaned) {
		part = strings.TrimSpace(part)
		if len([]rune(part)) >= minSentenceLen {
			meaningful = append(meaningful, part)
		}
	}

	if len(meaningful) == 0 {
		return truncate(cleaned, maxSummaryLen)
	}

	if len(meaningful) > 2 {
		meaningful = meaningful[:2]
	}
	return truncate(strings.Join(meaningful, " "), maxSummaryLen)
}

// splitSentences splits on sentence-ending punctuation, keeping the
// delimiter attached to the sentence.
func splitSentences(text string) []string {
	var parts []string
	last := 0
	for _, loc := range sentenceRe.FindAllStringIndex(text, -1) {
		parts = append(parts, text[last:loc[1]])
		last = loc[1]
	}
	if last < len(text) {
		parts = append(parts, text[last:])
	}
	return parts
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// recommendationRule maps (category fragment, minimum priority,
// sentiment constraint) to a recommended action. Rules are evaluated
// top-to-bottom; first match wins.
type recommendationRule struct {
	typeContains string
	minPriority  int
	sentiment    string // "ANY" or a concrete sentiment
	text         string
}

var recommendationRules = []recommendationRule{
	{"Мошеннические", 1, "ANY",
		"Немедленно заблокируйте счёт клиента и передайте заявку в службу безопасности."},
	{"Претензия", 7, model.SentimentNegative,
		"Приоритетная претензия: свяжитесь с клиентом в течение 1 часа, предложите компенсацию."},
	{"Претензия", 1, "ANY",
		"Рассмотрите претензию в течение 24 часов и предоставьте письменный ответ."},
	{"Жалоба", 7, model.SentimentNegative,
		"Высокоприоритетная жалоба: эскалируйте руководителю и свяжитесь с клиентом сегодня."},
	{"Жалоба", 1, "ANY",
		"Обработайте жалобу в течение рабочего дня, предложите решение проблемы."},
	{"Неработоспособность", 7, "ANY",
		"Критический сбой приложения: передайте в L2-поддержку немедленно."},
	{"Неработоспособность", 1, "ANY",
		"Проверьте техническую проблему и при необходимости передайте в L2-поддержку."},
	{"Смена данных", 1, "ANY",
		"Верифицируйте личность клиента перед внесением изменений."},
	{"Спам", 1, "ANY",
		"Отметьте контакт как спам и при необходимости заблокируйте отправителя."},
	{"Консультация", 1, model.SentimentPositive,
		"Предоставьте консультацию и предложите дополнительные продукты."},
	{"Консультация", 1, "ANY",
		"Предоставьте полную консультацию и зафиксируйте результат."},
}

const defaultRecommendation = "Обработайте обращение в стандартные сроки согласно регламенту."

// Recommender generates a human-readable action for a ticket from its
// category, priority and sentiment. No ML involved.
type Recommender struct{}

// NewRecommender creates a Recommender.
func NewRecommender() *Recommender {
	return &Recommender{}
}

// Recommend returns the first matching rule's action, or the default.
func (r *Recommender) Recommend(category string, priority int, sentiment string) string {
	for _, rule := range recommendationRules {
		if !strings.Contains(category, rule.typeContains) {
			continue
		}
		if priority < rule.minPriority {
			continue
		}
		if rule.sentiment != "ANY" && rule.sentiment != sentiment {
			continue
		}
		return rule.text
	}
	return defaultRecommendation
}
