package failover

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"fireroute/pkg/llm"
	"fireroute/pkg/tracker"
)

// Provider wraps multiple LLM providers and falls through the chain in
// order until one succeeds.
type Provider struct {
	providers []llm.Provider
	names     []string
	disabled  map[int]bool
	tracker   *tracker.Tracker
	mu        sync.RWMutex
}

// New creates a new failover Provider.
// providers: ordered list of initialized providers (fallback chain).
// names: names corresponding to the provider list.
func New(providers []llm.Provider, names []string, t *tracker.Tracker) (*Provider, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one provider required for failover")
	}
	if len(providers) != len(names) {
		return nil, fmt.Errorf("provider count (%d) does not match name count (%d)", len(providers), len(names))
	}

	return &Provider{
		providers: providers,
		names:     names,
		disabled:  make(map[int]bool),
		tracker:   t,
	}, nil
}

// GenerateJSON implements llm.Provider. Providers that fail with a
// non-retryable configuration error are disabled for the rest of the run.
func (f *Provider) GenerateJSON(ctx context.Context, intent, system, user string, target any) error {
	var errs []string

	for i, p := range f.providers {
		if f.isDisabled(i) || !p.HasProfile(intent) {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := p.GenerateJSON(ctx, intent, system, user, target)
		if err == nil {
			return nil
		}

		errs = append(errs, fmt.Sprintf("%s: %v", f.names[i], err))
		slog.Warn("LLM provider failed, trying next", "provider", f.names[i], "intent", intent, "error", err)

		if isConfigError(err) {
			f.disable(i)
		}
	}

	if len(errs) == 0 {
		return fmt.Errorf("no provider configured for intent %q", intent)
	}
	return fmt.Errorf("all providers failed: %s", strings.Join(errs, "; "))
}

// HasProfile implements llm.Provider.
func (f *Provider) HasProfile(intent string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for i, p := range f.providers {
		if f.disabled[i] {
			continue
		}
		if p.HasProfile(intent) {
			return true
		}
	}
	return false
}

func (f *Provider) isDisabled(i int) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.disabled[i]
}

func (f *Provider) disable(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.disabled[i] {
		slog.Warn("Disabling LLM provider for this run", "provider", f.names[i])
		f.disabled[i] = true
	}
}

// isConfigError reports whether the error indicates a permanently
// misconfigured provider rather than a transient failure.
func isConfigError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "api key is missing") ||
		strings.Contains(msg, "not configured") ||
		strings.Contains(msg, "status 401") ||
		strings.Contains(msg, "status 403")
}
