package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/prepwise/server/domain/entities"
	"github.com/prepwise/server/usecase"
)

// Client message types.
const (
	TypeCaptureStart  = "capture_start"
	TypeCaptureStop   = "capture_stop"
	TypeCaptureError  = "capture_error"
	TypePlaybackEnded = "playback_ended"
	TypePlaybackError = "playback_error"
	TypeMicCheck      = "mic_check"
	TypeFinish        = "finish"
)

// Server message types.
const (
	TypeSessionStarted = "session_started"
	TypeMessage        = "message"
	TypeNotice         = "notice"
	TypeSpeakingStart  = "speaking_start"
	TypeSpeakingEnd    = "speaking_end"
	TypeSpeakingStop   = "speaking_stop"
	TypeCaptureStarted = "capture_started"
	TypeCaptureStopped = "capture_stopped"
	TypeFinished       = "finished"
)

// ClientMessage is a JSON control frame from the browser.
type ClientMessage struct {
	Type   string `json:"type"`
	MIME   string `json:"mime,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ServerMessage is a JSON control frame to the browser.
type ServerMessage struct {
	Type        string `json:"type"`
	InterviewID string `json:"interview_id,omitempty"`
	Role        string `json:"role,omitempty"`
	Text        string `json:"text,omitempty"`
	Level       string `json:"level,omitempty"`
}

func marshalServerMessage(m ServerMessage) []byte {
	payload, _ := json.Marshal(m)
	return payload
}

func transcriptMessage(m entities.Message) []byte {
	return marshalServerMessage(ServerMessage{
		Type: TypeMessage,
		Role: string(m.Role),
		Text: m.Text,
	})
}

func noticeMessage(level, text string) []byte {
	return marshalServerMessage(ServerMessage{
		Type:  TypeNotice,
		Level: level,
		Text:  text,
	})
}

// captureReasonError maps the browser's capture failure reason onto the
// capture sentinel errors.
func captureReasonError(reason string) error {
	switch reason {
	case "unsupported":
		return usecase.ErrCaptureUnsupported
	case "permission-denied":
		return usecase.ErrMicPermissionDenied
	case "device-absent":
		return usecase.ErrNoCaptureDevice
	default:
		return fmt.Errorf("capture failed: %s", reason)
	}
}
