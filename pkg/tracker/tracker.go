package tracker

import (
	"sync"
	"sync/atomic"
)

// Tracker tracks LLM provider usage and routing outcomes for one run.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*ProviderStats

	routing RoutingStats
}

// ProviderStats holds metrics for a specific LLM provider.
// Fields are accessed atomically.
type ProviderStats struct {
	APISuccess  int64
	APIFailures int64
}

// RoutingStats holds counters for routing outcomes.
// Fields are accessed atomically.
type RoutingStats struct {
	Assigned    int64
	Redirected  int64
	Escalated   int64
	LLMFallback int64
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*ProviderStats),
	}
}

// getStats returns the stats object for a provider, creating it if needed.
func (t *Tracker) getStats(provider string) *ProviderStats {
	t.mu.RLock()
	s, ok := t.stats[provider]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[provider]; ok {
		return s
	}
	s = &ProviderStats{}
	t.stats[provider] = s
	return s
}

// TrackAPISuccess increments the success counter for a provider.
func (t *Tracker) TrackAPISuccess(provider string) {
	atomic.AddInt64(&t.getStats(provider).APISuccess, 1)
}

// TrackAPIFailure increments the failure counter for a provider.
func (t *Tracker) TrackAPIFailure(provider string) {
	atomic.AddInt64(&t.getStats(provider).APIFailures, 1)
}

// TrackAssigned counts a successful (non-sentinel) assignment.
func (t *Tracker) TrackAssigned() {
	atomic.AddInt64(&t.routing.Assigned, 1)
}

// TrackRedirected counts a nearest-office fallback assignment.
func (t *Tracker) TrackRedirected() {
	atomic.AddInt64(&t.routing.Redirected, 1)
}

// TrackEscalated counts an escalation-sentinel assignment.
func (t *Tracker) TrackEscalated() {
	atomic.AddInt64(&t.routing.Escalated, 1)
}

// TrackLLMFallback counts an enrichment that fell back to the
// deterministic summariser.
func (t *Tracker) TrackLLMFallback() {
	atomic.AddInt64(&t.routing.LLMFallback, 1)
}

// Snapshot returns a copy of the current provider stats.
func (t *Tracker) Snapshot() map[string]ProviderStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]ProviderStats)
	for k, v := range t.stats {
		result[k] = ProviderStats{
			APISuccess:  atomic.LoadInt64(&v.APISuccess),
			APIFailures: atomic.LoadInt64(&v.APIFailures),
		}
	}
	return result
}

// Routing returns a copy of the routing counters.
func (t *Tracker) Routing() RoutingStats {
	return RoutingStats{
		Assigned:    atomic.LoadInt64(&t.routing.Assigned),
		Redirected:  atomic.LoadInt64(&t.routing.Redirected),
		Escalated:   atomic.LoadInt64(&t.routing.Escalated),
		LLMFallback: atomic.LoadInt64(&t.routing.LLMFallback),
	}
}
