package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/prepwise/server/domain/repositories"
)

// Playback renders synthesized audio on the client. Play blocks until the
// utterance finishes or fails; Stop interrupts a running utterance.
type Playback interface {
	Play(ctx context.Context, audio []byte) error
	Stop()
}

// Speaker turns text into speech and plays it. Starting a new utterance
// always stops the previous one first so two never overlap.
type Speaker struct {
	tts      repositories.TextToSpeech
	playback Playback
	voice    string
	logger   *zap.Logger
}

func NewSpeaker(tts repositories.TextToSpeech, playback Playback, voice string, logger *zap.Logger) *Speaker {
	return &Speaker{
		tts:      tts,
		playback: playback,
		voice:    voice,
		logger:   logger,
	}
}

// Speak synthesizes text and plays the result, blocking until playback ends.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to speak")
	}

	s.playback.Stop()

	audio, err := s.tts.SynthesizeSpeech(ctx, text, s.voice)
	if err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}

	s.logger.Debug("Speaking",
		zap.Int("text_length", len(text)),
		zap.Int("audio_bytes", len(audio)))

	if err := s.playback.Play(ctx, audio); err != nil {
		return fmt.Errorf("play audio: %w", err)
	}
	return nil
}

// Stop interrupts the current utterance, if any.
func (s *Speaker) Stop() {
	s.playback.Stop()
}
