package ws_session

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/avoronov/quorum/core/internal/model"
	"github.com/gorilla/websocket"
)

const (
	EventVote      = "vote"
	EventCardAdded = "card_added"
)

// CardPayload is the card shape carried inside a card_added frame.
type CardPayload struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	SessionID   string `json:"session_id"`
}

// envelope is the minimal shape every inbound frame must satisfy before it
// is fanned out. Anything else is dropped.
type envelope struct {
	Type string `json:"type"`
}

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID model.SessionID
}

type sessionEvent struct {
	sessionID model.SessionID
	frame     []byte
}

// Hub relays frames between all clients of a session. Delivery is
// at-least-once from the subscriber's point of view and includes the
// sender: self-echo is expected and handled by the receiving state layer.
type Hub struct {
	mu sync.RWMutex

	sessions map[model.SessionID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan sessionEvent

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		sessions:   make(map[model.SessionID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan sessionEvent),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case event := <-h.broadcast:
			h.broadcastToSession(event.sessionID, event.frame)
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sessions[client.sessionID]; !ok {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	h.logger.Info("client registered", "session_id", client.sessionID)
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}
		}
	}

	h.logger.Info("client unregistered", "session_id", client.sessionID)
}

func (h *Hub) broadcastToSession(sessionID model.SessionID, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.sessions[sessionID]; ok {
		for client := range clients {
			select {
			case client.send <- frame:
			default:
				close(client.send)
				delete(h.sessions[sessionID], client)
			}
		}
	}
}

// BroadcastCardAdded pushes a freshly authored card to every live
// participant of the session. Called by the card authoring endpoint after
// the durable insert succeeds.
func (h *Hub) BroadcastCardAdded(sessionID model.SessionID, card CardPayload) {
	frame, err := json.Marshal(struct {
		Type string      `json:"type"`
		Card CardPayload `json:"card"`
	}{
		Type: EventCardAdded,
		Card: card,
	})
	if err != nil {
		h.logger.Error("failed to marshal card_added frame", "error", err.Error())
		return
	}

	h.broadcast <- sessionEvent{
		sessionID: sessionID,
		frame:     frame,
	}
}

func (h *Hub) startClientReading(client *Client) {
	defer func() {
		h.unregister <- client
		client.conn.Close()
	}()

	for {
		_, frame, err := client.conn.ReadMessage()
		if err != nil {
			break
		}

		var env envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			h.logger.Warn("dropping malformed frame", "session_id", client.sessionID)
			continue
		}
		if env.Type != EventVote && env.Type != EventCardAdded {
			h.logger.Warn("dropping frame of unknown type", "type", env.Type, "session_id", client.sessionID)
			continue
		}

		// Relay semantics: every well-formed frame goes back to the whole
		// session group, sender included.
		h.broadcast <- sessionEvent{
			sessionID: client.sessionID,
			frame:     frame,
		}
	}
}

func (h *Hub) startClientWriting(client *Client) {
	defer client.conn.Close()

	for frame := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			break
		}
	}
}
