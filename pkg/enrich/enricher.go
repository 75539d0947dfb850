package enrich

import (
	"context"
	"strings"

	"fireroute/pkg/config"
	"fireroute/pkg/geo"
	"fireroute/pkg/llm"
	"fireroute/pkg/model"
	"fireroute/pkg/nlp"
	"fireroute/pkg/sentiment"
	"fireroute/pkg/summary"
	"fireroute/pkg/tracker"
)

// highPriorityCategories get the category bonus in priority scoring.
var highPriorityCategories = map[string]bool{
	model.CategoryFraud:     true,
	model.CategoryComplaint: true,
	model.CategoryClaim:     true,
}

const (
	priorityMin = 1
	priorityMax = 10
)

// Enricher derives analytic attributes from a ticket body. Stateless
// after construction; safe to call from many workers.
type Enricher struct {
	classifier  *nlp.TypeClassifier
	langs       *nlp.LanguageDetector
	sentiments  *sentiment.Engine
	summarizer  *summary.Summarizer
	recommender *summary.Recommender
	geoIdx      *geo.Index
	adapter     *llm.Adapter
	weights     config.PriorityConfig
	tracker     *tracker.Tracker
}

// New creates an Enricher. The adapter may be disabled; enrichment then
// always uses the deterministic fallback.
func New(geoIdx *geo.Index, adapter *llm.Adapter, weights config.PriorityConfig, t *tracker.Tracker) *Enricher {
	return &Enricher{
		classifier:  nlp.NewTypeClassifier(),
		langs:       nlp.NewLanguageDetector(),
		sentiments:  sentiment.NewEngine(),
		summarizer:  summary.NewSummarizer(),
		recommender: summary.NewRecommender(),
		geoIdx:      geoIdx,
		adapter:     adapter,
		weights:     weights,
		tracker:     t,
	}
}

// Enrich derives the enrichment record for one ticket.
func (e *Enricher) Enrich(ctx context.Context, t *model.Ticket) model.Enrichment {
	city := CleanCity(t.City)
	segment := NormalizeSegment(t.Segment)

	category, score := e.classifier.ClassifyWithScore(t.Text)
	lang := e.langs.Detect(t.Text)
	sent := e.sentiments.Analyze(t.Text)
	priority := e.calculatePriority(category, sent, segment)

	enr := model.Enrichment{
		Category:      category,
		CategoryScore: score,
		Language:      lang,
		Sentiment:     sent,
		Priority:      priority,
	}

	if t.HasCoords() {
		enr.Lat, enr.Lon = t.Lat, t.Lon
	} else if p, ok := e.geoIdx.Geocode(city, t.Region); ok {
		lat, lon := p.Lat(), p.Lon()
		enr.Lat, enr.Lon = &lat, &lon
	}

	if res := e.summarizeLLM(ctx, t.Text); res != nil {
		enr.Summary = res.Summary
		enr.Recommendation = res.Recommendation
	} else {
		if e.tracker != nil && e.adapter.Enabled() {
			e.tracker.TrackLLMFallback()
		}
		enr.Summary = e.summarizer.Summarize(t.Text)
		enr.Recommendation = e.recommender.Recommend(category, priority, sent)
	}

	return enr
}

// summarizeLLM gates the adapter call: an empty body always takes the
// deterministic path.
func (e *Enricher) summarizeLLM(ctx context.Context, text string) *llm.Summary {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return e.adapter.Summarize(ctx, text)
}

func (e *Enricher) calculatePriority(category, sent, segment string) int {
	score := e.weights.Base
	if highPriorityCategories[category] {
		score += e.weights.HighTypeBonus
	}
	if sent == model.SentimentNegative {
		score += e.weights.NegativeBonus
	}
	if model.IsVIPSegment(segment) {
		score += e.weights.VIPBonus
	}
	return clamp(score, priorityMin, priorityMax)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
