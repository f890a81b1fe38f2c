package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestOpenAISynthesizeSpeech(t *testing.T) {
	var voice string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}

		var req struct {
			Model string `json:"model"`
			Input string `json:"input"`
			Voice string `json:"voice"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		voice = req.Voice
		if req.Input != "Welcome to the interview" {
			t.Fatalf("unexpected input %q", req.Input)
		}

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	tts, err := NewOpenAITTS(OpenAITTSConfig{APIKey: "test-key", BaseURL: server.URL + "/v1"}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewOpenAITTS failed: %v", err)
	}

	audio, err := tts.SynthesizeSpeech(context.Background(), "Welcome to the interview", "echo")
	if err != nil {
		t.Fatalf("SynthesizeSpeech failed: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Errorf("unexpected audio payload %q", audio)
	}
	if voice != "echo" {
		t.Errorf("expected voice echo, got %q", voice)
	}
}

func TestResolveVoice(t *testing.T) {
	for _, name := range []string{"alloy", "echo", "nova"} {
		if got := resolveVoice(name); string(got) != name {
			t.Errorf("resolveVoice(%q) = %q", name, got)
		}
	}
	if got := resolveVoice("robot"); string(got) != "nova" {
		t.Errorf("expected unknown voice to fall back to nova, got %q", got)
	}
}

func TestOpenAIRejectsEmptyText(t *testing.T) {
	tts, err := NewOpenAITTS(OpenAITTSConfig{APIKey: "test-key"}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewOpenAITTS failed: %v", err)
	}

	if _, err := tts.SynthesizeSpeech(context.Background(), "", "nova"); err == nil {
		t.Error("expected error for empty text")
	}
}
