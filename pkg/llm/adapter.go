package llm

import (
	"context"
	"log/slog"
	"time"
)

// IntentSummary is the profile name used for ticket summarisation.
const IntentSummary = "summary"

// maxBodyRunes caps the ticket body sent to the model.
const maxBodyRunes = 2000

// summarySystemPrompt demands strict JSON with the two fields the
// enrichment record needs.
const summarySystemPrompt = `Ты — опытный аналитик колл-центра.

По тексту обращения клиента напиши СТРОГО JSON без лишнего текста:

{
  "summary": "краткая суть обращения: что именно случилось у клиента, в 1-2 предложениях",
  "recommendation": "конкретные шаги для менеджера: что проверить, с кем связаться, что сообщить клиенту"
}

ВАЖНО:
- Только JSON, никакого текста до или после
- Никаких markdown-блоков
- summary не длиннее 250 символов
- recommendation не длиннее 300 символов
- Язык ответа — русский
- Профессиональный деловой стиль`

// Summary is the structured enrichment returned by the model.
type Summary struct {
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}

// Adapter wraps a Provider with the ticket-summary contract: bounded
// latency, strict JSON, nil on every error path. Stateless; safe to
// call from many workers concurrently.
type Adapter struct {
	provider Provider
	timeout  time.Duration
}

// NewAdapter creates an Adapter. A nil provider yields a disabled
// adapter whose Summarize always returns nil.
func NewAdapter(p Provider, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Adapter{provider: p, timeout: timeout}
}

// Enabled reports whether the adapter can serve summary requests.
func (a *Adapter) Enabled() bool {
	return a != nil && a.provider != nil && a.provider.HasProfile(IntentSummary)
}

// Summarize asks the model for a summary + recommendation pair.
// Returns nil on any failure: disabled adapter, timeout, network error,
// malformed or incomplete output.
func (a *Adapter) Summarize(ctx context.Context, text string) *Summary {
	if !a.Enabled() {
		return nil
	}

	runes := []rune(text)
	if len(runes) > maxBodyRunes {
		text = string(runes[:maxBodyRunes])
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var result Summary
	if err := a.provider.GenerateJSON(callCtx, IntentSummary, summarySystemPrompt, text, &result); err != nil {
		slog.Debug("LLM summary failed", "error", err)
		return nil
	}

	if result.Summary == "" || result.Recommendation == "" {
		return nil
	}

	result.Summary = truncateRunes(result.Summary, 300)
	result.Recommendation = truncateRunes(result.Recommendation, 300)
	return &result
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
