package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"
)

// GoogleSpeechToText implements SpeechToText for Google Cloud
type GoogleSpeechToText struct {
	logger *zap.Logger
}

func NewGoogleSpeechToText(logger *zap.Logger) *GoogleSpeechToText {
	return &GoogleSpeechToText{logger: logger}
}

// TranscribeAudio converts a finalized audio clip to text using Google Cloud
// Speech-to-Text. An empty transcript is returned when no speech is detected.
func (g *GoogleSpeechToText) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio data received")
	}

	client, err := speech.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	encoding, sampleRate, err := getAudioEncoding(mimeType)
	if err != nil {
		return "", err
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: sampleRate,
			LanguageCode:    "en-US",
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to recognize audio: %w", err)
	}

	var transcript string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript += result.Alternatives[0].Transcript
		}
	}

	g.logger.Debug("Google transcription complete",
		zap.Int("audio_bytes", len(audio)),
		zap.Int("transcript_length", len(transcript)))

	return transcript, nil
}

// getAudioEncoding converts a MIME type to the Google Speech API enum and the
// sample rate the codec mandates (0 lets the API read it from the header).
func getAudioEncoding(mimeType string) (speechpb.RecognitionConfig_AudioEncoding, int32, error) {
	switch mimeType {
	case "audio/webm", "audio/webm;codecs=opus":
		return speechpb.RecognitionConfig_WEBM_OPUS, 48000, nil
	case "audio/ogg", "audio/ogg;codecs=opus":
		return speechpb.RecognitionConfig_OGG_OPUS, 48000, nil
	case "audio/wav", "audio/x-wav":
		return speechpb.RecognitionConfig_LINEAR16, 0, nil
	case "audio/flac":
		return speechpb.RecognitionConfig_FLAC, 0, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, 0, fmt.Errorf("unsupported audio mime type: %s", mimeType)
	}
}
