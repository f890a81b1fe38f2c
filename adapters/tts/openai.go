package tts

import (
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAITTS implements TextToSpeech using OpenAI's speech synthesis API.
type OpenAITTS struct {
	client *openai.Client
	logger *zap.Logger
}

// OpenAITTSConfig configures the OpenAI speech synthesizer.
type OpenAITTSConfig struct {
	APIKey  string
	BaseURL string // override for tests
}

// Voices the interview supports. Unknown names fall back to nova.
var supportedVoices = map[string]openai.SpeechVoice{
	"alloy": openai.VoiceAlloy,
	"echo":  openai.VoiceEcho,
	"nova":  openai.VoiceNova,
}

func NewOpenAITTS(config OpenAITTSConfig, logger *zap.Logger) (*OpenAITTS, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAITTS{
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}, nil
}

// SynthesizeSpeech renders text as MP3 audio using the given voice.
func (o *OpenAITTS) SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.TTSModel1,
		Input: text,
		Voice: resolveVoice(voice),
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech synthesis: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}

	o.logger.Debug("Speech synthesis complete",
		zap.Int("text_length", len(text)),
		zap.Int("audio_bytes", len(audio)))

	return audio, nil
}

func resolveVoice(voice string) openai.SpeechVoice {
	if v, ok := supportedVoices[voice]; ok {
		return v
	}
	return openai.VoiceNova
}
