package llmclient

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/crashlens/crashlens/api/schemas"
	"github.com/crashlens/crashlens/internal/config"
)

// NewClient is a factory function that creates a CompletionClient based on
// the configured provider.
func NewClient(cfg config.LLMConfig, logger *zap.Logger) (schemas.CompletionClient, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg, logger)
	case config.ProviderGemini:
		return NewGeminiClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported LLM provider configured: %q. Supported: [%s, %s]",
			cfg.Provider, config.ProviderAnthropic, config.ProviderGemini)
	}
}
