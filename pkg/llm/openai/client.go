package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"fireroute/pkg/config"
	"fireroute/pkg/llm"
	"fireroute/pkg/request"
)

// Client implements llm.Provider for any OpenAI-compatible API
// (OpenRouter, OpenAI, Groq, ...).
type Client struct {
	rc          *request.Client
	apiKey      string
	baseURL     string
	profiles    map[string]string
	temperature float32
	maxTokens   int

	mu sync.RWMutex
}

// Request follows the standard OpenAI Chat Completions format.
type Request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Temperature    float32         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat requests a structured response mode.
type ResponseFormat struct {
	Type string `json:"type"`
}

// Response follows the standard Chat Completions response format.
type Response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient creates a new OpenAI-compatible client.
func NewClient(cfg config.ProviderConfig, temperature float32, maxTokens int, rc *request.Client) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}

	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      cfg.Key,
		profiles:    cfg.Profiles,
		temperature: temperature,
		maxTokens:   maxTokens,
		rc:          rc,
	}, nil
}

// GenerateJSON implements llm.Provider.
func (c *Client) GenerateJSON(ctx context.Context, intent, system, user string, target any) error {
	model, err := c.resolveModel(intent)
	if err != nil {
		return err
	}

	// OpenAI-compatible providers require "json" in the prompt for
	// json_object mode.
	var respFmt *ResponseFormat
	if strings.Contains(strings.ToLower(system+user), "json") {
		respFmt = &ResponseFormat{Type: "json_object"}
	}

	req := Request{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: respFmt,
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
	}

	respText, err := c.execute(ctx, req)
	if err != nil {
		return err
	}

	if err := llm.DecodeJSON(respText, target); err != nil {
		return fmt.Errorf("failed to unmarshal openai json: %w (raw: %s)", err, respText)
	}

	return nil
}

func (c *Client) execute(ctx context.Context, oreq Request) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("api key is missing")
	}

	body, err := json.Marshal(oreq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Content-Type":  "application/json",
	}

	u := c.baseURL + "/chat/completions"

	respBody, err := c.rc.PostWithHeaders(ctx, u, body, headers)
	if err != nil {
		return "", err
	}

	var oresp Response
	if err := json.Unmarshal(respBody, &oresp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if oresp.Error != nil {
		return "", fmt.Errorf("openai api error: %s (%s)", oresp.Error.Message, oresp.Error.Type)
	}

	if len(oresp.Choices) == 0 {
		return "", fmt.Errorf("api returned no choices")
	}

	return oresp.Choices[0].Message.Content, nil
}

// HasProfile implements llm.Provider.
func (c *Client) HasProfile(intent string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.profiles[intent]
	return ok && c.profiles[intent] != ""
}

func (c *Client) resolveModel(intent string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if model, ok := c.profiles[intent]; ok && model != "" {
		return model, nil
	}
	return "", fmt.Errorf("profile %q not configured", intent)
}
