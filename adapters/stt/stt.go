package stt

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/prepwise/server/domain/repositories"
	"github.com/prepwise/server/internal/config"
)

// NewSpeechToText constructs the configured transcription provider.
func NewSpeechToText(cfg config.Config, logger *zap.Logger) (repositories.SpeechToText, error) {
	switch cfg.STTProvider {
	case "whisper":
		return NewWhisperSpeechToText(WhisperConfig{APIKey: cfg.OpenAIAPIKey}, logger)
	case "google":
		return NewGoogleSpeechToText(logger), nil
	default:
		return nil, fmt.Errorf("unknown STT provider %q: supported providers are whisper, google", cfg.STTProvider)
	}
}
