package repositories

import "context"

// SpeechToText abstracts speech recognition services.
type SpeechToText interface {
	// TranscribeAudio converts a finalized audio clip to text. An empty
	// transcript is a valid result and distinct from an error.
	TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error)
}
