package entities

import (
	"fmt"
	"time"
)

// TurnState is the voice room's position in the capture/respond cycle.
type TurnState string

const (
	TurnIdle            TurnState = "idle"
	TurnAwaitingCapture TurnState = "awaiting_capture"
	TurnTranscribing    TurnState = "transcribing"
	TurnGenerating      TurnState = "generating"
	TurnSpeaking        TurnState = "speaking"
	TurnFinished        TurnState = "finished"
)

// MessageRole identifies who produced a transcript entry.
type MessageRole string

const (
	MessageRoleAI   MessageRole = "ai"
	MessageRoleUser MessageRole = "user"
)

// Message is one immutable transcript entry. Append order is the conversation
// and is what gets rendered and fed back to the model as context.
type Message struct {
	Role MessageRole `json:"role"`
	Text string      `json:"text"`
}

// turnTransitions is the set of legal state edges. TurnFinished is reachable
// from everywhere and terminal; it is special-cased in Advance.
var turnTransitions = map[TurnState][]TurnState{
	TurnIdle:            {TurnAwaitingCapture, TurnSpeaking},
	TurnAwaitingCapture: {TurnTranscribing, TurnIdle},
	TurnTranscribing:    {TurnGenerating, TurnIdle},
	TurnGenerating:      {TurnSpeaking, TurnIdle},
	TurnSpeaking:        {TurnIdle},
	TurnFinished:        {},
}

// VoiceSession is the in-memory state of one voice interview, from room mount
// to finish. It is owned and mutated exclusively by the turn controller; it
// performs no locking of its own.
type VoiceSession struct {
	UserID      string
	InterviewID string

	state     TurnState
	messages  []Message
	startedAt time.Time
}

// NewVoiceSession creates a session in the idle state with an empty log.
func NewVoiceSession(userID, interviewID string) *VoiceSession {
	return &VoiceSession{
		UserID:      userID,
		InterviewID: interviewID,
		state:       TurnIdle,
	}
}

// State returns the current turn state.
func (s *VoiceSession) State() TurnState {
	return s.state
}

// IsListening reports whether capture is armed. Listening and speaking are
// both derived from the single state field, so they can never be true at once.
func (s *VoiceSession) IsListening() bool {
	return s.state == TurnAwaitingCapture
}

// IsSpeaking reports whether an utterance is being played.
func (s *VoiceSession) IsSpeaking() bool {
	return s.state == TurnSpeaking
}

// IsFinished reports whether the session reached its terminal state.
func (s *VoiceSession) IsFinished() bool {
	return s.state == TurnFinished
}

// Advance moves the session to the given state, rejecting illegal edges.
// Once finished, no further transitions are accepted.
func (s *VoiceSession) Advance(to TurnState) error {
	if s.state == TurnFinished {
		return fmt.Errorf("session is finished")
	}
	if to == TurnFinished {
		s.state = TurnFinished
		return nil
	}
	for _, allowed := range turnTransitions[s.state] {
		if allowed == to {
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("illegal transition %s -> %s", s.state, to)
}

// Finish marks the session terminal. Always succeeds.
func (s *VoiceSession) Finish() {
	s.state = TurnFinished
}

// Append adds an entry to the transcript. The log is append-only; existing
// entries are never modified or removed.
func (s *VoiceSession) Append(role MessageRole, text string) {
	s.messages = append(s.messages, Message{Role: role, Text: text})
}

// Messages returns a copy of the transcript in append order.
func (s *VoiceSession) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// LastUserText returns the most recent user entry, or "" if there is none.
func (s *VoiceSession) LastUserText() string {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == MessageRoleUser {
			return s.messages[i].Text
		}
	}
	return ""
}

// MarkStarted records a session-start attempt and reports whether the start
// side effect should run. A second start within the window is treated as a
// duplicate trigger and skipped; the hosting runtime may fire the mount hook
// twice in quick succession.
func (s *VoiceSession) MarkStarted(now time.Time, window time.Duration) bool {
	if !s.startedAt.IsZero() && now.Sub(s.startedAt) < window {
		return false
	}
	s.startedAt = now
	return true
}
