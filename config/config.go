// Package config loads the immutable process configuration for PromptRelay.
//
// Configuration is read once at startup from environment variables, with
// an optional YAML providers file for richer per-provider settings. The
// resulting Config is never mutated afterwards; it is passed by reference
// to the components that need it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider kinds understood by the registry builder.
const (
	KindAnthropic = "anthropic"
	KindOpenAI    = "openai"
	KindCLI       = "cli"
)

// ProviderSpec describes how to reach one named backend.
type ProviderSpec struct {
	// Kind selects the adapter: anthropic, openai (any OpenAI-compatible
	// endpoint) or cli (local subprocess).
	Kind string `yaml:"kind"`
	// Model is the model identifier passed to the backend.
	Model string `yaml:"model"`
	// APIKeyEnv names the environment variable holding the credential.
	// Resolved at load time; the key itself never appears in files.
	APIKeyEnv string `yaml:"api_key_env"`
	// APIKey is the resolved credential. Populated from APIKeyEnv.
	APIKey string `yaml:"-"`
	// BaseURL points openai-kind specs at a compatible server
	// (Mistral, DeepSeek, a local Ollama endpoint).
	BaseURL string `yaml:"base_url"`
	// Command and Args configure cli-kind specs.
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	// Timeout bounds one backend invocation. Zero means the default
	// for the operation class.
	Timeout time.Duration `yaml:"timeout"`
}

// Config holds all application configuration. Immutable after Load.
type Config struct {
	Addr            string
	DefaultProvider string
	DefaultAgent    string
	ContextDir      string
	HistoryLimit    int

	// MessageTimeout is the budget for plain chat messages when a
	// provider spec does not carry its own.
	MessageTimeout time.Duration
	// GenerationTimeout is the longer budget for generation-heavy
	// providers (local models, CLI tools).
	GenerationTimeout time.Duration

	// RateLimit is requests per second per client on the HTTP surface;
	// RateBurst is the token bucket size.
	RateLimit float64
	RateBurst int

	Providers map[string]ProviderSpec
}

// providersFile is the YAML shape of an optional external provider table.
type providersFile struct {
	Providers map[string]ProviderSpec `yaml:"providers"`
}

// UnmarshalYAML decodes a provider spec accepting human-readable timeout
// values ("45s", "2m"), which yaml.v3 does not parse into time.Duration
// on its own.
func (s *ProviderSpec) UnmarshalYAML(value *yaml.Node) error {
	type raw struct {
		Kind      string   `yaml:"kind"`
		Model     string   `yaml:"model"`
		APIKeyEnv string   `yaml:"api_key_env"`
		BaseURL   string   `yaml:"base_url"`
		Command   string   `yaml:"command"`
		Args      []string `yaml:"args"`
		Timeout   string   `yaml:"timeout"`
	}
	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}
	s.Kind = r.Kind
	s.Model = r.Model
	s.APIKeyEnv = r.APIKeyEnv
	s.BaseURL = r.BaseURL
	s.Command = r.Command
	s.Args = r.Args
	if r.Timeout != "" {
		d, err := time.ParseDuration(r.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", r.Timeout, err)
		}
		s.Timeout = d
	}
	return nil
}

// Load builds the Config from environment variables, merging an optional
// YAML providers file named by PROVIDERS_FILE over the built-in defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:              ":" + getEnv("PORT", "3001"),
		DefaultProvider:   getEnv("LLM_PROVIDER", "claude"),
		DefaultAgent:      getEnv("DEFAULT_AGENT", "claudia"),
		ContextDir:        getEnv("CONTEXT_DIR", ""),
		HistoryLimit:      getIntEnv("HISTORY_LIMIT", 5),
		MessageTimeout:    getDurationEnv("MESSAGE_TIMEOUT", 15*time.Second),
		GenerationTimeout: getDurationEnv("GENERATION_TIMEOUT", 60*time.Second),
		RateLimit:         getFloatEnv("RATE_LIMIT_RPS", 5),
		RateBurst:         getIntEnv("RATE_LIMIT_BURST", 10),
		Providers:         defaultProviders(),
	}

	if path := os.Getenv("PROVIDERS_FILE"); path != "" {
		if err := cfg.mergeProvidersFile(path); err != nil {
			return nil, err
		}
	}

	// Resolve credentials and fill per-kind timeout defaults.
	for name, spec := range cfg.Providers {
		if spec.APIKeyEnv != "" {
			spec.APIKey = os.Getenv(spec.APIKeyEnv)
		}
		if spec.Timeout == 0 {
			switch spec.Kind {
			case KindCLI:
				spec.Timeout = cfg.GenerationTimeout
			case KindOpenAI:
				if spec.BaseURL != "" {
					// Self-hosted endpoints tend to be slower.
					spec.Timeout = cfg.GenerationTimeout
				} else {
					spec.Timeout = cfg.MessageTimeout
				}
			default:
				spec.Timeout = cfg.MessageTimeout
			}
		}
		cfg.Providers[name] = spec
	}

	if _, ok := cfg.Providers[cfg.DefaultProvider]; !ok {
		return nil, fmt.Errorf("default provider %q is not configured", cfg.DefaultProvider)
	}

	return cfg, nil
}

// defaultProviders mirrors the historical provider table: Claude primary,
// OpenAI, Mistral, DeepSeek, and a local OpenAI-compatible endpoint.
func defaultProviders() map[string]ProviderSpec {
	return map[string]ProviderSpec{
		"claude": {
			Kind:      KindAnthropic,
			Model:     getEnv("CLAUDE_MODEL", "claude-3-5-sonnet-20241022"),
			APIKeyEnv: "CLAUDE_API_KEY",
		},
		"openai": {
			Kind:      KindOpenAI,
			Model:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKeyEnv: "OPENAI_API_KEY",
		},
		"mistral": {
			Kind:      KindOpenAI,
			Model:     getEnv("MISTRAL_MODEL", "mistral-small-latest"),
			APIKeyEnv: "MISTRAL_API_KEY",
			BaseURL:   "https://api.mistral.ai/v1",
		},
		"deepseek": {
			Kind:      KindOpenAI,
			Model:     getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
			APIKeyEnv: "DEEPSEEK_API_KEY",
			BaseURL:   getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com/v1"),
		},
		"local": {
			Kind:    KindOpenAI,
			Model:   getEnv("LOCAL_MODEL", "local-model"),
			BaseURL: getEnv("LOCAL_LLM_ENDPOINT", "http://localhost:11434/v1"),
		},
	}
}

func (c *Config) mergeProvidersFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read providers file: %w", err)
	}
	var pf providersFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parse providers file %s: %w", path, err)
	}
	for name, spec := range pf.Providers {
		c.Providers[name] = spec
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
