package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestValidateElevenLabsConfig(t *testing.T) {
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{}); err == nil {
		t.Error("expected error for missing API key")
	}
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", Stability: 1.5}); err == nil {
		t.Error("expected error for out-of-range stability")
	}
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k", Clarity: -0.1}); err == nil {
		t.Error("expected error for out-of-range clarity")
	}
	if err := ValidateElevenLabsConfig(ElevenLabsConfig{APIKey: "k"}); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestElevenLabsSynthesizeSpeech(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/text-to-speech/") {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "test-key" {
			t.Fatalf("missing API key header")
		}

		var req elevenLabsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Text != "Hello candidate" {
			t.Fatalf("expected text in request, got %q", req.Text)
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-key", APIBaseURL: server.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewElevenLabsTTS failed: %v", err)
	}

	audio, err := tts.SynthesizeSpeech(context.Background(), "Hello candidate", "nova")
	if err != nil {
		t.Fatalf("SynthesizeSpeech failed: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Errorf("unexpected audio payload %q", audio)
	}
}

func TestElevenLabsUnknownVoiceFallsBack(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte("audio"))
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-key", APIBaseURL: server.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewElevenLabsTTS failed: %v", err)
	}

	if _, err := tts.SynthesizeSpeech(context.Background(), "hi", "robot"); err != nil {
		t.Fatalf("SynthesizeSpeech failed: %v", err)
	}
	if !strings.HasSuffix(path, voiceIDs["nova"]) {
		t.Errorf("expected fallback to nova voice, got path %q", path)
	}
}

func TestElevenLabsRejectsEmptyText(t *testing.T) {
	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-key"}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewElevenLabsTTS failed: %v", err)
	}

	if _, err := tts.SynthesizeSpeech(context.Background(), "   ", "nova"); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestElevenLabsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	tts, err := NewElevenLabsTTS(ElevenLabsConfig{APIKey: "test-key", APIBaseURL: server.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewElevenLabsTTS failed: %v", err)
	}

	if _, err := tts.SynthesizeSpeech(context.Background(), "hi", "nova"); err == nil {
		t.Error("expected error for non-200 response")
	}
}
