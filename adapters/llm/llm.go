package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/prepwise/server/domain/repositories"
	"github.com/prepwise/server/internal/config"
)

// NewInterviewer constructs the configured LLM provider.
func NewInterviewer(ctx context.Context, cfg config.Config, logger *zap.Logger) (repositories.Interviewer, error) {
	switch cfg.LLMProvider {
	case "openai":
		return NewOpenAIInterviewer(OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.OpenAIModel,
		}, logger)
	case "gemini":
		return NewGeminiInterviewer(ctx, GeminiConfig{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q: supported providers are openai, gemini", cfg.LLMProvider)
	}
}
