package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"google.golang.org/api/iterator"
	"google.golang.org/genai"

	"fireroute/pkg/config"
	"fireroute/pkg/llm"
	"fireroute/pkg/tracker"
)

// Client implements llm.Provider for Google Gemini.
type Client struct {
	genaiClient *genai.Client
	apiKey      string
	profiles    map[string]string // Map intent -> modelName
	tracker     *tracker.Tracker
	temperature float32
	maxTokens   int32

	mu sync.RWMutex
}

// NewClient creates a new Gemini client.
func NewClient(cfg config.ProviderConfig, temperature float32, maxTokens int, t *tracker.Tracker) (*Client, error) {
	c := &Client{
		tracker:     t,
		apiKey:      cfg.Key,
		profiles:    cfg.Profiles,
		temperature: temperature,
		maxTokens:   int32(maxTokens),
	}

	if c.apiKey != "" {
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: c.apiKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create genai client: %w", err)
		}
		c.genaiClient = client

		if err := c.ValidateModels(context.Background()); err != nil {
			if os.Getenv("TEST_MODE") == "true" {
				slog.Warn("Gemini model validation failed (proceeding due to TEST_MODE)", "error", err)
			} else {
				return nil, fmt.Errorf("gemini model validation failed: %w", err)
			}
		}
	}

	return c, nil
}

// Close cleans up resources.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.genaiClient = nil
}

// GenerateJSON implements llm.Provider.
func (c *Client) GenerateJSON(ctx context.Context, intent, system, user string, target any) error {
	c.mu.RLock()
	client := c.genaiClient
	c.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("gemini client not configured")
	}

	modelName, genCfg, err := c.resolveModel(intent)
	if err != nil {
		return fmt.Errorf("gemini resolve model error: %w", err)
	}
	genCfg.ResponseMIMEType = "application/json"
	if system != "" {
		genCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	resp, err := client.Models.GenerateContent(ctx, modelName, genai.Text(user), genCfg)
	if err != nil {
		if c.tracker != nil {
			c.tracker.TrackAPIFailure("gemini")
		}
		return fmt.Errorf("generate json error: %w", err)
	}

	text, err := getResponseText(resp)
	if err != nil {
		if c.tracker != nil {
			c.tracker.TrackAPIFailure("gemini")
		}
		return err
	}

	if err := llm.DecodeJSON(text, target); err != nil {
		if c.tracker != nil {
			c.tracker.TrackAPIFailure("gemini")
		}
		return fmt.Errorf("failed to unmarshal JSON response: %w. Response: %s", err, text)
	}

	if c.tracker != nil {
		c.tracker.TrackAPISuccess("gemini")
	}

	return nil
}

func getResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// resolveModel determines the model name and generation config based on
// the intent.
func (c *Client) resolveModel(intent string) (string, *genai.GenerateContentConfig, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	model, ok := c.profiles[intent]
	if !ok || model == "" {
		return "", nil, fmt.Errorf("no model configured for intent %q", intent)
	}

	temp := c.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: c.maxTokens,
	}
	return model, cfg, nil
}

// ValidateModels checks if the configured models are available.
func (c *Client) ValidateModels(ctx context.Context) error {
	if os.Getenv("TEST_MODE") == "true" {
		slog.Warn("Skipping Gemini model validation (TEST_MODE=true)")
		return nil
	}
	if len(c.profiles) == 0 {
		return fmt.Errorf("no profiles configured for gemini provider")
	}

	modelsToCheck := make(map[string]bool)
	for _, m := range c.profiles {
		modelsToCheck[m] = true
	}

	var missingModels []string
	for model := range modelsToCheck {
		name := model
		if !strings.HasPrefix(name, "models/") {
			name = "models/" + name
		}
		_, err := c.genaiClient.Models.Get(ctx, name, nil)
		if err != nil {
			missingModels = append(missingModels, model)
		}
	}

	if len(missingModels) == 0 {
		return nil
	}

	// Fetch available models for the user
	iter, listErr := c.genaiClient.Models.List(ctx, nil)
	var availableInfo string
	if listErr == nil {
		var availableModels []string
		for {
			resp, nextErr := iter.Next(ctx)
			if nextErr == iterator.Done {
				break
			}
			if nextErr != nil {
				break
			}
			if strings.Contains(strings.ToLower(resp.Name), "gemini") {
				availableModels = append(availableModels, resp.Name)
			}
		}
		if len(availableModels) > 0 {
			availableInfo = "\nAvailable models for this key: " + strings.Join(availableModels, ", ")
		}
	}

	return fmt.Errorf("configured models %v not found or unauthorized.%s", missingModels, availableInfo)
}

// HasProfile implements llm.Provider.
func (c *Client) HasProfile(intent string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.profiles[intent]
	return ok && c.profiles[intent] != ""
}
