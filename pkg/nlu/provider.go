package nlu

import (
	"fmt"
)

// Config selects and configures the NLU collaborator.
type Config struct {
	Enabled   bool                      `koanf:"enabled" json:"enabled"`
	Provider  string                    `koanf:"provider" json:"provider"` // "disabled", "anthropic", "openai"
	Providers map[string]ProviderConfig `koanf:"providers" json:"providers,omitempty"`
}

// ProviderConfig holds provider-specific configuration.
type ProviderConfig struct {
	Model     string `koanf:"model" json:"model,omitempty"`
	APIKey    string `koanf:"api_key" json:"-"` // never serialized
	BaseURL   string `koanf:"base_url" json:"base_url,omitempty"`
	MaxTokens int    `koanf:"max_tokens" json:"max_tokens,omitempty"`
	Timeout   int    `koanf:"timeout" json:"timeout,omitempty"` // seconds
}

// DefaultConfig returns a configuration with the collaborator disabled.
// Deterministic extraction alone is a complete, degraded mode.
func DefaultConfig() Config {
	return Config{
		Enabled:  false,
		Provider: "disabled",
	}
}

// New creates a Collaborator from config. Disabled or unconfigured
// setups get a NoOp collaborator, never an error.
func New(cfg Config) (Collaborator, error) {
	if !cfg.Enabled || cfg.Provider == "" || cfg.Provider == "disabled" {
		return NoOp{}, nil
	}

	providerCfg, ok := cfg.Providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", cfg.Provider)
	}

	switch cfg.Provider {
	case "anthropic":
		return newAnthropicCollaborator(providerCfg)
	case "openai":
		return newOpenAICollaborator(providerCfg)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
