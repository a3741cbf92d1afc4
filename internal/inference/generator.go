package inference

import "github.com/docproc-labs/docproc/internal/config"

// NewGenerator selects the generative backend from config: OpenRouter when an
// API key is set, otherwise Bedrock.
func NewGenerator(cfg *config.Config) (Generator, error) {
	if cfg.OpenRouter.APIKey != "" {
		return NewOpenRouterClient(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model, cfg.OpenRouter.BaseURL), nil
	}
	return NewBedrockClient(cfg.Bedrock)
}
