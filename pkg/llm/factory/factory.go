package factory

import (
	"fmt"
	"log/slog"

	"fireroute/pkg/config"
	"fireroute/pkg/llm"
	"fireroute/pkg/llm/failover"
	"fireroute/pkg/llm/gemini"
	"fireroute/pkg/llm/openai"
	"fireroute/pkg/request"
	"fireroute/pkg/tracker"
)

// summaryTemperature keeps the model output stable across runs.
const summaryTemperature = 0.2

// Build constructs the provider chain from config. Providers without
// credentials are skipped; when none remain, Build returns (nil, nil)
// and the adapter stays disabled.
func Build(cfg config.LLMConfig, rc *request.Client, t *tracker.Tracker) (llm.Provider, error) {
	var providers []llm.Provider
	var names []string

	for _, name := range cfg.Fallback {
		pCfg, ok := cfg.Providers[name]
		if !ok {
			return nil, fmt.Errorf("fallback references unknown provider %q", name)
		}
		if pCfg.Key == "" {
			slog.Info("LLM provider has no credentials, skipping", "provider", name)
			continue
		}

		switch pCfg.Type {
		case "gemini":
			client, err := gemini.NewClient(pCfg, summaryTemperature, cfg.MaxTokens, t)
			if err != nil {
				slog.Warn("Failed to initialize gemini provider, skipping", "provider", name, "error", err)
				continue
			}
			providers = append(providers, client)
			names = append(names, name)
		case "openai":
			client, err := openai.NewClient(pCfg, summaryTemperature, cfg.MaxTokens, rc)
			if err != nil {
				slog.Warn("Failed to initialize openai provider, skipping", "provider", name, "error", err)
				continue
			}
			providers = append(providers, client)
			names = append(names, name)
		default:
			return nil, fmt.Errorf("unknown provider type %q for %q", pCfg.Type, name)
		}
	}

	if len(providers) == 0 {
		return nil, nil
	}

	return failover.New(providers, names, t)
}
