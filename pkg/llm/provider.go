package llm

import (
	"context"
)

// Provider defines the interface for interacting with LLM services.
type Provider interface {
	// GenerateJSON sends a system + user message pair and unmarshals the
	// JSON response into the target struct. The intent selects the model
	// through the provider's profile map.
	GenerateJSON(ctx context.Context, intent, system, user string, target any) error

	// HasProfile reports whether the provider has a model configured for
	// the given intent.
	HasProfile(intent string) bool
}
