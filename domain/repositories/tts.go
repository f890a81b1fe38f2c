package repositories

import "context"

// TextToSpeech abstracts speech synthesis services.
type TextToSpeech interface {
	// SynthesizeSpeech renders text as raw audio bytes using the given voice.
	SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, error)
}
