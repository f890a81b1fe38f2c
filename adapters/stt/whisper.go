package stt

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// WhisperSpeechToText implements SpeechToText using OpenAI's Whisper API.
type WhisperSpeechToText struct {
	client *openai.Client
	logger *zap.Logger
}

// WhisperConfig configures the Whisper transcriber.
type WhisperConfig struct {
	APIKey  string
	BaseURL string // override for tests
}

func NewWhisperSpeechToText(config WhisperConfig, logger *zap.Logger) (*WhisperSpeechToText, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &WhisperSpeechToText{
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}, nil
}

// TranscribeAudio converts a finalized audio clip to text. Whitespace is
// trimmed so silence comes back as the empty string, which callers treat as
// "could not understand", not as an error.
func (w *WhisperSpeechToText) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio data received")
	}

	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audio),
		FilePath: fileNameForMime(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}

	transcript := strings.TrimSpace(resp.Text)

	w.logger.Debug("Whisper transcription complete",
		zap.Int("audio_bytes", len(audio)),
		zap.Int("transcript_length", len(transcript)))

	return transcript, nil
}

// fileNameForMime picks a file name whose extension matches the clip's
// container. Whisper infers the format from the extension.
func fileNameForMime(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "audio/webm"):
		return "speech.webm"
	case strings.HasPrefix(mimeType, "audio/ogg"):
		return "speech.ogg"
	case strings.HasPrefix(mimeType, "audio/mpeg"), strings.HasPrefix(mimeType, "audio/mp3"):
		return "speech.mp3"
	case strings.HasPrefix(mimeType, "audio/mp4"):
		return "speech.mp4"
	default:
		return "speech.wav"
	}
}
