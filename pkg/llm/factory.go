package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Supported oracle providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds the settings for constructing an oracle client.
type Config struct {
	Provider string // "openai" (default) or "anthropic"
	Endpoint string // base URL for OpenAI-compatible endpoints
	Model    string
	APIKey   string
}

// NewFromConfig constructs the oracle client selected by cfg.Provider.
func NewFromConfig(cfg *Config, logger *zap.Logger) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderAnthropic:
		return NewAnthropicClient(cfg, logger)
	case ProviderOpenAI, "":
		return NewOpenAIClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown oracle provider %q", cfg.Provider)
	}
}
