package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/trunk/internal/config"
	"github.com/sandevgo/trunk/internal/core"
	"github.com/sandevgo/trunk/pkg/log"
)

// NewProvider creates the appropriate AIProvider based on configuration.
func NewProvider(ctx context.Context, provider string) (core.AIProvider, error) {
	switch provider {
	case "openrouter":
		cfg := config.NewOpenRouterConfig(ctx)
		log.FromCtx(ctx).Info().Str("provider", provider).Str("model", cfg.Model).Msg("starting llm provider")
		return NewOpenRouter(cfg.APIKey, cfg.Model), nil
	case "ollama":
		cfg := config.NewOllamaConfig(ctx)
		log.FromCtx(ctx).Info().Str("provider", provider).Str("model", cfg.Model).Msg("starting llm provider")
		return NewOllama(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
