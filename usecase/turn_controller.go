package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prepwise/server/domain/entities"
	"github.com/prepwise/server/domain/repositories"
)

// Notices surfaced to the candidate during a voice interview.
const (
	NoticeWaitForAI          = "Wait until the AI finishes speaking."
	NoticeNotUnderstood      = "Could not understand you."
	NoticeTranscriptionFail  = "Transcription failed."
	NoticeQuestionFail       = "Failed to get next question from AI."
	NoticePlaybackFail       = "Audio playback failed."
	NoticeCaptureUnsupported = "Audio capture is not supported in this browser."
	NoticePermissionDenied   = "Microphone access denied. Please allow microphone access."
	NoticeNoDevice           = "No microphone found."
	NoticeCaptureFail        = "Could not start recording."
)

// Notifier delivers transient notices to the candidate.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// TurnController runs the turn-taking loop of one voice interview: the
// candidate records an answer, the answer is transcribed, the AI produces the
// next question, and the question is spoken aloud. It owns the session state
// machine and is safe for concurrent use.
type TurnController struct {
	session   *entities.VoiceSession
	recorder  *Recorder
	speaker   *Speaker
	ai        repositories.Interviewer
	stt       repositories.SpeechToText
	notifier  Notifier
	onMessage func(entities.Message)
	logger    *zap.Logger

	startWindow time.Duration
	now         func() time.Time

	mu       sync.Mutex // guards session
	speakMu  sync.Mutex // guards speaking
	speaking bool
}

// TurnControllerConfig wires a controller's collaborators.
type TurnControllerConfig struct {
	Session   *entities.VoiceSession
	Recorder  *Recorder
	Speaker   *Speaker
	AI        repositories.Interviewer
	STT       repositories.SpeechToText
	Notifier  Notifier
	OnMessage func(entities.Message)
	// StartWindow is how long repeated Start calls are treated as duplicates.
	// Zero means 2 seconds.
	StartWindow time.Duration
	Logger      *zap.Logger
}

func NewTurnController(cfg TurnControllerConfig) *TurnController {
	startWindow := cfg.StartWindow
	if startWindow <= 0 {
		startWindow = 2 * time.Second
	}

	onMessage := cfg.OnMessage
	if onMessage == nil {
		onMessage = func(entities.Message) {}
	}

	return &TurnController{
		session:     cfg.Session,
		recorder:    cfg.Recorder,
		speaker:     cfg.Speaker,
		ai:          cfg.AI,
		stt:         cfg.STT,
		notifier:    cfg.Notifier,
		onMessage:   onMessage,
		logger:      cfg.Logger,
		startWindow: startWindow,
		now:         time.Now,
	}
}

// Start opens the interview with a spoken welcome line. Calls arriving within
// the start window of a previous one are dropped, so a client that reconnects
// or re-renders does not greet the candidate twice.
func (c *TurnController) Start(ctx context.Context) {
	c.mu.Lock()
	if !c.session.MarkStarted(c.now(), c.startWindow) {
		c.mu.Unlock()
		c.logger.Debug("Duplicate start suppressed",
			zap.String("interview_id", c.session.InterviewID))
		return
	}

	welcome := fmt.Sprintf(
		"Hi %s! I'm Alex, your AI interviewer today. Let's begin. Tell me about your background.",
		shortID(c.session.UserID),
	)
	c.session.Append(entities.MessageRoleAI, welcome)
	c.mu.Unlock()

	c.onMessage(entities.Message{Role: entities.MessageRoleAI, Text: welcome})
	c.speakSafe(ctx, welcome)
}

// ToggleCapture flips the candidate's microphone. The first call starts
// recording; the next stops it and runs the answer through transcription,
// question generation, and speech.
func (c *TurnController) ToggleCapture(ctx context.Context) {
	c.mu.Lock()
	if c.session.IsFinished() {
		c.mu.Unlock()
		return
	}

	if !c.recorder.Recording() {
		// A new capture may only begin once the previous turn has fully
		// resolved, including transcription and generation.
		if c.session.State() != entities.TurnIdle {
			c.mu.Unlock()
			c.notifier.Info(NoticeWaitForAI)
			return
		}
		c.startTurn(ctx)
		c.mu.Unlock()
		return
	}

	c.finishTurnLocked(ctx)
}

// startTurn begins recording. Called with c.mu held.
func (c *TurnController) startTurn(ctx context.Context) {
	if !c.advance(entities.TurnAwaitingCapture) {
		return
	}

	if err := c.recorder.StartCapture(ctx); err != nil {
		c.logger.Warn("Failed to start capture", zap.Error(err))
		c.advance(entities.TurnIdle)
		c.notifier.Error(captureNotice(err))
	}
}

// finishTurnLocked stops recording and runs the full answer pipeline. It is
// entered with c.mu held and releases it before the slow remote calls.
func (c *TurnController) finishTurnLocked(ctx context.Context) {
	if !c.advance(entities.TurnTranscribing) {
		c.mu.Unlock()
		return
	}
	clip, err := c.recorder.StopCapture()
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("Failed to stop capture", zap.Error(err))
		c.toIdle()
		c.notifier.Error(NoticeTranscriptionFail)
		return
	}

	transcript, err := c.stt.TranscribeAudio(ctx, clip.Data, clip.MIME)
	if err != nil {
		c.logger.Warn("Transcription failed", zap.Error(err))
		c.toIdle()
		c.notifier.Error(NoticeTranscriptionFail)
		return
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		c.toIdle()
		c.notifier.Warn(NoticeNotUnderstood)
		return
	}

	c.mu.Lock()
	c.session.Append(entities.MessageRoleUser, transcript)
	lastAnswer := c.session.LastUserText()
	ok := c.advance(entities.TurnGenerating)
	c.mu.Unlock()
	c.onMessage(entities.Message{Role: entities.MessageRoleUser, Text: transcript})
	if !ok {
		return
	}

	reply, err := c.ai.GenerateFollowUp(ctx, lastAnswer)
	if err != nil {
		// The candidate's answer stays in the log even when the AI fails.
		c.logger.Warn("Follow-up generation failed", zap.Error(err))
		c.toIdle()
		c.notifier.Error(NoticeQuestionFail)
		return
	}

	c.mu.Lock()
	c.session.Append(entities.MessageRoleAI, reply)
	c.mu.Unlock()
	c.onMessage(entities.Message{Role: entities.MessageRoleAI, Text: reply})

	c.speakSafe(ctx, reply)
}

// speakSafe speaks text unless an utterance is already in flight, in which
// case the new one is dropped rather than queued. The busy flag is released
// no matter how playback ends.
func (c *TurnController) speakSafe(ctx context.Context, text string) {
	c.speakMu.Lock()
	if c.speaking {
		c.speakMu.Unlock()
		c.logger.Debug("Dropping utterance, playback already in flight")
		return
	}
	c.speaking = true
	c.speakMu.Unlock()

	defer func() {
		c.speakMu.Lock()
		c.speaking = false
		c.speakMu.Unlock()
	}()

	c.mu.Lock()
	ok := c.advance(entities.TurnSpeaking)
	c.mu.Unlock()
	if !ok {
		return
	}

	err := c.speaker.Speak(ctx, text)
	c.toIdle()
	if err != nil {
		c.logger.Warn("Playback failed", zap.Error(err))
		c.notifier.Error(NoticePlaybackFail)
	}
}

// AbortCapture cancels an in-flight recording after the client reported a
// capture failure, surfacing the matching notice.
func (c *TurnController) AbortCapture(reason error) {
	c.recorder.Teardown()

	c.mu.Lock()
	if c.session.State() == entities.TurnAwaitingCapture {
		c.advance(entities.TurnIdle)
	}
	c.mu.Unlock()

	c.notifier.Error(captureNotice(reason))
}

// PreflightCapture opens and immediately closes a capture stream so that
// permission or device problems surface before the first real turn.
func (c *TurnController) PreflightCapture(ctx context.Context) error {
	if err := c.recorder.StartCapture(ctx); err != nil {
		c.notifier.Error(captureNotice(err))
		return err
	}
	if _, err := c.recorder.StopCapture(); err != nil {
		c.logger.Warn("Failed to close preflight capture", zap.Error(err))
	}
	return nil
}

// Finish ends the interview. The state is terminal; later toggles are no-ops.
func (c *TurnController) Finish() {
	c.mu.Lock()
	c.session.Finish()
	c.mu.Unlock()

	c.speaker.Stop()
	c.recorder.Teardown()
}

// Teardown releases capture and playback resources. Errors are swallowed so
// cleanup always completes. Safe to call more than once.
func (c *TurnController) Teardown() {
	c.speaker.Stop()
	c.recorder.Teardown()
}

// State reports the current turn state.
func (c *TurnController) State() entities.TurnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.State()
}

// Messages returns a copy of the session transcript.
func (c *TurnController) Messages() []entities.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Messages()
}

// advance moves the session state machine, reporting whether the edge was
// legal. Rejected edges are logged and leave the state unchanged. Called with
// c.mu held.
func (c *TurnController) advance(to entities.TurnState) bool {
	if err := c.session.Advance(to); err != nil {
		c.logger.Warn("Illegal state transition",
			zap.String("from", string(c.session.State())),
			zap.String("to", string(to)))
		return false
	}
	return true
}

func (c *TurnController) toIdle() {
	c.mu.Lock()
	c.advance(entities.TurnIdle)
	c.mu.Unlock()
}

func captureNotice(err error) string {
	switch {
	case errors.Is(err, ErrCaptureUnsupported):
		return NoticeCaptureUnsupported
	case errors.Is(err, ErrMicPermissionDenied):
		return NoticePermissionDenied
	case errors.Is(err, ErrNoCaptureDevice):
		return NoticeNoDevice
	default:
		return NoticeCaptureFail
	}
}

func shortID(id string) string {
	if len(id) > 4 {
		return id[:4]
	}
	return id
}
