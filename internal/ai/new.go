package ai

import (
	"fmt"

	"github.com/jgoulah/envirolink/internal/config"
)

// New returns the Generator for the configured provider
func New(cfg *config.Config) (Generator, error) {
	switch cfg.GetProvider() {
	case config.ProviderGemini:
		return NewGeminiClient(cfg), nil
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}
