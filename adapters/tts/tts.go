package tts

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/prepwise/server/domain/repositories"
	"github.com/prepwise/server/internal/config"
)

// NewTextToSpeech constructs the configured speech synthesis provider.
func NewTextToSpeech(cfg config.Config, logger *zap.Logger) (repositories.TextToSpeech, error) {
	switch cfg.TTSProvider {
	case "openai":
		return NewOpenAITTS(OpenAITTSConfig{APIKey: cfg.OpenAIAPIKey}, logger)
	case "elevenlabs":
		return NewElevenLabsTTS(ElevenLabsConfig{APIKey: cfg.ElevenLabsAPIKey}, logger)
	default:
		return nil, fmt.Errorf("unknown TTS provider %q: supported providers are openai, elevenlabs", cfg.TTSProvider)
	}
}
