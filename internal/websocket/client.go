package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/prepwise/server/domain/entities"
	"github.com/prepwise/server/usecase"
)

// WriteData is one outbound websocket frame.
type WriteData struct {
	// Type is websocket.TextMessage or websocket.BinaryMessage.
	Type    int
	Payload []byte
}

// Client is one connected voice room. It bridges the websocket connection and
// the turn controller: it is the controller's capture source (mic audio
// arrives as binary frames), its playback sink (synthesized audio goes out as
// binary frames, completion comes back as an ack), and its notifier.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound frames.
	send chan WriteData

	userID      string
	interviewID string

	controller *usecase.TurnController
	recorder   *usecase.Recorder

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	captureMIME string

	// Playback acks: nil for a clean finish, an error for a client-side
	// playback failure.
	ack chan error

	logger *zap.Logger
}

var (
	_ usecase.CaptureSource = (*Client)(nil)
	_ usecase.Playback      = (*Client)(nil)
	_ usecase.Notifier      = (*Client)(nil)
)

// ServeVoiceRoom upgrades the request and runs a voice interview session on
// the connection until the peer goes away.
func ServeVoiceRoom(hub *Hub, c echo.Context, userID, interviewID string) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		hub.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan WriteData, 256),
		userID:      userID,
		interviewID: interviewID,
		ctx:         ctx,
		cancel:      cancel,
		captureMIME: "audio/webm",
		ack:         make(chan error, 1),
		logger:      hub.logger,
	}

	client.recorder = usecase.NewRecorder(client, hub.logger)
	speaker := usecase.NewSpeaker(hub.tts, client, hub.voice, hub.logger)
	client.controller = usecase.NewTurnController(usecase.TurnControllerConfig{
		Session:     entities.NewVoiceSession(userID, interviewID),
		Recorder:    client.recorder,
		Speaker:     speaker,
		AI:          hub.ai,
		STT:         hub.stt,
		Notifier:    client,
		OnMessage:   client.sendTranscript,
		StartWindow: hub.startWindow,
		Logger:      hub.logger,
	})

	client.hub.register <- client

	go client.writePump()
	go client.readPump()

	client.sendJSON(marshalServerMessage(ServerMessage{
		Type:        TypeSessionStarted,
		InterviewID: interviewID,
	}))
	go client.controller.Start(ctx)

	return nil
}

func (c *Client) key() string {
	return c.userID + "/" + c.interviewID
}

// readPump pumps messages from the websocket connection to the controller.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		c.controller.Teardown()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			c.processBinaryAudioChunk(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps outbound frames to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// processMessage handles a JSON control frame from the browser.
func (c *Client) processMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Error("Failed to parse message", zap.Error(err))
		return
	}

	switch msg.Type {
	case TypeCaptureStart:
		if msg.MIME != "" {
			c.mu.Lock()
			c.captureMIME = msg.MIME
			c.mu.Unlock()
		}
		if !c.recorder.Recording() {
			c.controller.ToggleCapture(c.ctx)
		}

	case TypeCaptureStop:
		// The stop path blocks on transcription, generation, and playback;
		// it must not stall the read pump, which still has to deliver the
		// playback ack.
		if c.recorder.Recording() {
			go c.controller.ToggleCapture(c.ctx)
		}

	case TypeCaptureError:
		c.controller.AbortCapture(captureReasonError(msg.Reason))

	case TypePlaybackEnded:
		c.signalPlayback(nil)

	case TypePlaybackError:
		c.signalPlayback(errors.New("client playback failed"))

	case TypeMicCheck:
		go func() { _ = c.controller.PreflightCapture(c.ctx) }()

	case TypeFinish:
		c.controller.Finish()
		c.sendJSON(marshalServerMessage(ServerMessage{Type: TypeFinished}))

	default:
		c.logger.Warn("Unknown message type", zap.String("type", msg.Type))
	}
}

// processBinaryAudioChunk appends mic audio to the active recording.
func (c *Client) processBinaryAudioChunk(data []byte) {
	if err := c.recorder.Write(data); err != nil {
		c.logger.Debug("Dropping audio chunk, not recording",
			zap.String("user_id", c.userID),
			zap.Int("size", len(data)))
	}
}

// Open implements usecase.CaptureSource. The browser runs the actual
// microphone; opening a stream just acknowledges that recording may begin.
func (c *Client) Open(ctx context.Context) (usecase.CaptureStream, error) {
	c.mu.Lock()
	mime := c.captureMIME
	c.mu.Unlock()

	c.sendJSON(marshalServerMessage(ServerMessage{Type: TypeCaptureStarted}))
	return &wsCaptureStream{client: c, mime: mime}, nil
}

type wsCaptureStream struct {
	client *Client
	mime   string
}

func (s *wsCaptureStream) MIME() string { return s.mime }

func (s *wsCaptureStream) Close() error {
	s.client.sendJSON(marshalServerMessage(ServerMessage{Type: TypeCaptureStopped}))
	return nil
}

// Play implements usecase.Playback. It ships the utterance as a framed binary
// payload and blocks until the browser acks the end of playback.
func (c *Client) Play(ctx context.Context, audio []byte) error {
	// Drop any stale ack from a previous utterance.
	select {
	case <-c.ack:
	default:
	}

	c.sendJSON(marshalServerMessage(ServerMessage{Type: TypeSpeakingStart}))
	c.sendData(audio)
	c.sendJSON(marshalServerMessage(ServerMessage{Type: TypeSpeakingEnd}))

	select {
	case err := <-c.ack:
		return err
	case <-time.After(playbackTimeout):
		c.logger.Warn("Playback ack timed out",
			zap.String("user_id", c.userID),
			zap.String("interview_id", c.interviewID))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop implements usecase.Playback. It tells the browser to halt audio and
// releases any Play call waiting on an ack.
func (c *Client) Stop() {
	c.sendJSON(marshalServerMessage(ServerMessage{Type: TypeSpeakingStop}))
	c.signalPlayback(nil)
}

func (c *Client) signalPlayback(err error) {
	select {
	case c.ack <- err:
	default:
	}
}

// Info implements usecase.Notifier.
func (c *Client) Info(msg string) { c.sendJSON(noticeMessage("info", msg)) }

// Warn implements usecase.Notifier.
func (c *Client) Warn(msg string) { c.sendJSON(noticeMessage("warn", msg)) }

// Error implements usecase.Notifier.
func (c *Client) Error(msg string) { c.sendJSON(noticeMessage("error", msg)) }

func (c *Client) sendTranscript(m entities.Message) {
	c.sendJSON(transcriptMessage(m))
}

func (c *Client) sendJSON(payload []byte) {
	c.enqueue(WriteData{Type: websocket.TextMessage, Payload: payload})
}

func (c *Client) sendData(payload []byte) {
	c.enqueue(WriteData{Type: websocket.BinaryMessage, Payload: payload})
}

func (c *Client) enqueue(frame WriteData) {
	select {
	case c.send <- frame:
	default:
		c.logger.Warn("Dropping frame, send buffer full",
			zap.String("user_id", c.userID))
	}
}
