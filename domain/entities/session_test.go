package entities

import (
	"testing"
	"time"
)

func TestVoiceSessionCreation(t *testing.T) {
	session := NewVoiceSession("user-123", "interview-456")

	if session.State() != TurnIdle {
		t.Errorf("Expected state %s, got %s", TurnIdle, session.State())
	}
	if len(session.Messages()) != 0 {
		t.Errorf("Expected empty transcript, got %d messages", len(session.Messages()))
	}
	if session.IsListening() || session.IsSpeaking() {
		t.Error("Expected new session to be neither listening nor speaking")
	}
}

func TestAdvanceLegalCycle(t *testing.T) {
	session := NewVoiceSession("user", "interview")

	steps := []TurnState{
		TurnAwaitingCapture,
		TurnTranscribing,
		TurnGenerating,
		TurnSpeaking,
		TurnIdle,
	}
	for _, to := range steps {
		if err := session.Advance(to); err != nil {
			t.Fatalf("Advance(%s) failed: %v", to, err)
		}
	}
}

func TestAdvanceRejectsIllegalEdges(t *testing.T) {
	session := NewVoiceSession("user", "interview")

	if err := session.Advance(TurnGenerating); err == nil {
		t.Error("Expected error advancing idle -> generating")
	}
	if err := session.Advance(TurnTranscribing); err == nil {
		t.Error("Expected error advancing idle -> transcribing")
	}
	if session.State() != TurnIdle {
		t.Errorf("Expected state to stay %s, got %s", TurnIdle, session.State())
	}
}

func TestFinishIsTerminal(t *testing.T) {
	session := NewVoiceSession("user", "interview")

	if err := session.Advance(TurnAwaitingCapture); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	session.Finish()

	if !session.IsFinished() {
		t.Error("Expected session to be finished")
	}
	if err := session.Advance(TurnIdle); err == nil {
		t.Error("Expected transitions after finish to fail")
	}
}

func TestListeningAndSpeakingNeverBothTrue(t *testing.T) {
	session := NewVoiceSession("user", "interview")

	states := []TurnState{
		TurnAwaitingCapture,
		TurnTranscribing,
		TurnGenerating,
		TurnSpeaking,
		TurnIdle,
		TurnSpeaking,
		TurnIdle,
	}
	for _, to := range states {
		if err := session.Advance(to); err != nil {
			t.Fatalf("Advance(%s) failed: %v", to, err)
		}
		if session.IsListening() && session.IsSpeaking() {
			t.Fatalf("Listening and speaking both true in state %s", session.State())
		}
	}
}

func TestAppendIsMonotonic(t *testing.T) {
	session := NewVoiceSession("user", "interview")

	session.Append(MessageRoleAI, "Tell me about yourself.")
	first := session.Messages()

	session.Append(MessageRoleUser, "I build backend services.")
	second := session.Messages()

	if len(second) < len(first) {
		t.Errorf("Transcript shrank: %d -> %d", len(first), len(second))
	}
	if second[0] != first[0] {
		t.Error("Existing transcript entry changed after append")
	}
	if second[1].Role != MessageRoleUser {
		t.Errorf("Expected user role, got %s", second[1].Role)
	}
}

func TestLastUserText(t *testing.T) {
	session := NewVoiceSession("user", "interview")

	if got := session.LastUserText(); got != "" {
		t.Errorf("Expected empty last user text, got %q", got)
	}

	session.Append(MessageRoleAI, "First question?")
	session.Append(MessageRoleUser, "First answer.")
	session.Append(MessageRoleAI, "Second question?")

	if got := session.LastUserText(); got != "First answer." {
		t.Errorf("Expected %q, got %q", "First answer.", got)
	}
}

func TestMarkStartedDeduplicatesWithinWindow(t *testing.T) {
	session := NewVoiceSession("user", "interview")
	window := 2 * time.Second
	base := time.Now()

	if !session.MarkStarted(base, window) {
		t.Fatal("Expected first start to run")
	}
	if session.MarkStarted(base.Add(500*time.Millisecond), window) {
		t.Error("Expected second start within window to be skipped")
	}
	if !session.MarkStarted(base.Add(3*time.Second), window) {
		t.Error("Expected start after window to run")
	}
}
