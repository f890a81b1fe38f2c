package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/prepwise/server/domain/repositories"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio chunks

	// How long to wait for the client to ack that playback finished.
	playbackTimeout = 60 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active voice room clients and carries the shared
// AI collaborators each session needs.
type Hub struct {
	// Registered clients keyed by user and interview.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mu sync.RWMutex

	ai          repositories.Interviewer
	stt         repositories.SpeechToText
	tts         repositories.TextToSpeech
	voice       string
	startWindow time.Duration

	logger *zap.Logger
}

// HubConfig wires the hub's shared collaborators.
type HubConfig struct {
	AI          repositories.Interviewer
	STT         repositories.SpeechToText
	TTS         repositories.TextToSpeech
	Voice       string
	StartWindow time.Duration
	Logger      *zap.Logger
}

// NewHub creates a new voice room hub
func NewHub(cfg HubConfig) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		ai:          cfg.AI,
		stt:         cfg.STT,
		tts:         cfg.TTS,
		voice:       cfg.Voice,
		startWindow: cfg.StartWindow,
		logger:      cfg.Logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.key()]; ok {
				// A reconnect replaces the previous connection.
				old.conn.Close()
			}
			h.clients[client.key()] = client
			h.mu.Unlock()
			h.logger.Info("Voice room client registered",
				zap.String("user_id", client.userID),
				zap.String("interview_id", client.interviewID))

		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.key()]; ok && current == client {
				delete(h.clients, client.key())
			}
			h.mu.Unlock()
			h.logger.Info("Voice room client unregistered",
				zap.String("user_id", client.userID),
				zap.String("interview_id", client.interviewID))
		}
	}
}

// ClientCount reports the number of connected voice rooms.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
