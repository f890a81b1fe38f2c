package usecase

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Capture failure modes reported by a capture source. Callers branch on these
// to produce user-facing notices.
var (
	ErrCaptureUnsupported  = errors.New("audio capture is not supported")
	ErrMicPermissionDenied = errors.New("microphone permission denied")
	ErrNoCaptureDevice     = errors.New("no microphone detected")
	ErrNotRecording        = errors.New("not recording")
	ErrAlreadyRecording    = errors.New("already recording")
)

// AudioClip is a finalized capture ready for transcription.
type AudioClip struct {
	Data []byte
	MIME string
}

// CaptureStream is one live recording. Audio arrives through Recorder.Write
// while the stream is open.
type CaptureStream interface {
	// MIME reports the container format of the incoming audio.
	MIME() string
	Close() error
}

// CaptureSource opens recording streams. The websocket client implements this
// by asking the browser for microphone access.
type CaptureSource interface {
	Open(ctx context.Context) (CaptureStream, error)
}

// Recorder accumulates audio from a capture source into clips. It is safe for
// concurrent use; a websocket read pump writes audio while the turn
// controller starts and stops captures.
type Recorder struct {
	mu        sync.Mutex
	source    CaptureSource
	stream    CaptureStream
	buf       bytes.Buffer
	recording bool
	logger    *zap.Logger
}

func NewRecorder(source CaptureSource, logger *zap.Logger) *Recorder {
	return &Recorder{source: source, logger: logger}
}

// StartCapture opens a new recording stream. Failures from the source pass
// through untouched so callers can distinguish permission problems from
// missing hardware.
func (r *Recorder) StartCapture(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return ErrAlreadyRecording
	}

	stream, err := r.source.Open(ctx)
	if err != nil {
		return err
	}

	r.stream = stream
	r.buf.Reset()
	r.recording = true
	return nil
}

// Write appends captured audio to the current clip.
func (r *Recorder) Write(data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return ErrNotRecording
	}
	_, _ = r.buf.Write(data)
	return nil
}

// StopCapture finalizes the current clip. The stream is closed whether or not
// finalization succeeds.
func (r *Recorder) StopCapture() (AudioClip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return AudioClip{}, ErrNotRecording
	}

	clip := AudioClip{
		Data: append([]byte(nil), r.buf.Bytes()...),
		MIME: r.stream.MIME(),
	}

	closeErr := r.stream.Close()
	r.stream = nil
	r.recording = false
	r.buf.Reset()

	if closeErr != nil {
		return AudioClip{}, closeErr
	}
	return clip, nil
}

// Recording reports whether a capture is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// Teardown releases any live stream. Errors are logged, never returned, so
// session cleanup always runs to completion. Safe to call more than once.
func (r *Recorder) Teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return
	}

	if err := r.stream.Close(); err != nil {
		r.logger.Warn("Failed to close capture stream during teardown", zap.Error(err))
	}
	r.stream = nil
	r.recording = false
	r.buf.Reset()
}
