package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Routing  RoutingConfig  `yaml:"routing"`
	Priority PriorityConfig `yaml:"priority"`
	LLM      LLMConfig      `yaml:"llm"`
	Request  RequestConfig  `yaml:"request"`
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Inputs   InputsConfig   `yaml:"inputs"`
}

// PipelineConfig holds enrichment pipeline settings.
type PipelineConfig struct {
	WorkerCount int `yaml:"worker_count"`
}

// RoutingConfig holds router tuning knobs.
type RoutingConfig struct {
	RRSpreadThreshold int `yaml:"rr_spread_threshold"`
	// FallbackCapitals are matched against office names by lowercased
	// substring; the resolved offices serve the 50_50 and
	// coordinate-less fallback paths, in order.
	FallbackCapitals []string `yaml:"fallback_capitals"`
}

// PriorityConfig holds the additive priority weights.
type PriorityConfig struct {
	Base          int `yaml:"base"`
	HighTypeBonus int `yaml:"high_type_bonus"`
	NegativeBonus int `yaml:"negative_bonus"`
	VIPBonus      int `yaml:"vip_bonus"`
}

// LLMConfig holds settings for the LLM enrichment providers.
type LLMConfig struct {
	Providers map[string]ProviderConfig `yaml:"providers"`
	Fallback  []string                  `yaml:"fallback"` // Ordered provider names for failover
	Timeout   Duration                  `yaml:"timeout"`  // Per-call deadline
	MaxTokens int                       `yaml:"max_tokens"`
}

// ProviderConfig holds configuration for a single LLM provider.
type ProviderConfig struct {
	Type     string            `yaml:"type"` // "gemini", "openai"
	Key      string            `yaml:"-"`    // API Key (loaded from env)
	BaseURL  string            `yaml:"base_url"`
	Profiles map[string]string `yaml:"profiles"` // Map of intent -> model
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
	MaxDelay  Duration `yaml:"max_delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings. An empty path disables persistence.
type DBConfig struct {
	Path string `yaml:"path"`
}

// InputsConfig holds default input file locations.
type InputsConfig struct {
	Tickets  string `yaml:"tickets"`
	Managers string `yaml:"managers"`
	Offices  string `yaml:"offices"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			WorkerCount: 20,
		},
		Routing: RoutingConfig{
			RRSpreadThreshold: 3,
			FallbackCapitals:  []string{"астан", "алмат"},
		},
		Priority: PriorityConfig{
			Base:          5,
			HighTypeBonus: 3,
			NegativeBonus: 2,
			VIPBonus:      2,
		},
		LLM: LLMConfig{
			Providers: map[string]ProviderConfig{
				"openrouter": {
					Type:    "openai",
					BaseURL: "https://openrouter.ai/api/v1",
					Profiles: map[string]string{
						"summary": "upstage/solar-pro-3:free",
					},
				},
				"gemini": {
					Type: "gemini",
					Profiles: map[string]string{
						"summary": "gemini-2.5-flash-lite",
					},
				},
			},
			Fallback:  []string{"openrouter", "gemini"},
			Timeout:   Duration(15 * time.Second),
			MaxTokens: 600,
		},
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(30 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(1 * time.Second),
				MaxDelay:  Duration(15 * time.Second),
			},
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/fireroute.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/fireroute.db",
		},
		Inputs: InputsConfig{
			Tickets:  "./data/tickets.csv",
			Managers: "./data/managers.csv",
			Offices:  "./data/offices.csv",
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does
// NOT save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save config file: %w", err)
		}
	}

	// Load .env files (local first, then default). Errors are ignored
	// because relying solely on system env vars is valid.
	_ = godotenv.Load(".env.local", ".env")

	loadSecretsFromEnv(cfg)

	return cfg, nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# FIRE Route Configuration
# ------------------------
# Duration units: ns, us (or µs), ms, s, m, h, d (day), w (week)
# LLM credentials are read from the environment:
#   OPENROUTER_API_KEY, GEMINI_API_KEY

`)
	data = append(header, data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return Save(path, DefaultConfig())
}

// LLMEnabled reports whether at least one provider carries credentials.
func (c *Config) LLMEnabled() bool {
	for _, p := range c.LLM.Providers {
		if p.Key != "" {
			return true
		}
	}
	return false
}

func loadSecretsFromEnv(cfg *Config) {
	for name, p := range cfg.LLM.Providers {
		switch p.Type {
		case "gemini":
			if key := os.Getenv("GEMINI_API_KEY"); key != "" {
				p.Key = key
			}
		case "openai":
			if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
				p.Key = key
			}
			if key := os.Getenv("OPENAI_API_KEY"); key != "" && p.Key == "" {
				p.Key = key
			}
		}
		// Update the map because p is a copy
		cfg.LLM.Providers[name] = p
	}
}
