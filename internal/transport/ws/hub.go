package ws

import (
	"context"
	"encoding/json"
	"sync"

	"secureview/internal/logger"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Server message types. Session events reuse the event type names of the session package.
const (
	MsgSnapshot     MessageType = "session.snapshot"
	MsgDisconnected MessageType = "session.disconnected"
	MsgError        MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection represents one WebSocket client following one task session
type Connection struct {
	UserID string
	TaskID string
	Send   chan []byte
	Hub    *Hub
}

// BroadcastMessage is a message addressed to a user's connections for a task
type BroadcastMessage struct {
	UserID  string
	TaskID  string
	Message *Message
}

// Hub fans session events out to the owning user's connections
type Hub struct {
	// userID -> connections
	conns map[string]map[*Connection]bool

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string
	done       chan struct{}

	log *logger.Logger
}

// NewHub creates a new WebSocket hub. Call Run to start delivering.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		conns:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		disconnect: make(chan string, 16),
		done:       make(chan struct{}),
		log:        log.With("component", "ws_hub"),
	}
}

// Run processes registrations and deliveries until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for userID, set := range h.conns {
				for conn := range set {
					close(conn.Send)
				}
				delete(h.conns, userID)
			}
			h.mu.Unlock()
			return nil

		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.UserID] == nil {
				h.conns[conn.UserID] = make(map[*Connection]bool)
			}
			h.conns[conn.UserID][conn] = true
			h.mu.Unlock()
			h.log.Debug("client connected", "user_id", conn.UserID, "task_id", conn.TaskID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.UserID]; ok && set[conn] {
				delete(set, conn)
				close(conn.Send)
				if len(set) == 0 {
					delete(h.conns, conn.UserID)
				}
				h.log.Debug("client disconnected", "user_id", conn.UserID, "task_id", conn.TaskID)
			}
			h.mu.Unlock()

		case userID := <-h.disconnect:
			h.mu.Lock()
			data, _ := json.Marshal(&Message{Type: MsgDisconnected, Payload: json.RawMessage(`{}`)})
			for conn := range h.conns[userID] {
				select {
				case conn.Send <- data:
				default:
				}
				close(conn.Send)
			}
			delete(h.conns, userID)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.conns[msg.UserID] {
				if conn.TaskID != "" && conn.TaskID != msg.TaskID {
					continue
				}
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection. After shutdown the connection is closed immediately.
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// SendToUser queues a message for a user's connections on taskID (implements service.Broadcaster).
// It never blocks the caller; messages are dropped when the queue is full.
func (h *Hub) SendToUser(userID, taskID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to encode ws payload", "type", msgType, "error", err)
		return
	}
	msg := &BroadcastMessage{
		UserID: userID,
		TaskID: taskID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("ws broadcast queue full, dropping message", "type", msgType)
	}
}

// encodeMessage wraps payload in a Message envelope.
func encodeMessage(msgType MessageType, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: data})
}

// DisconnectUser closes every connection of userID (implements service.Broadcaster)
func (h *Hub) DisconnectUser(userID string) {
	select {
	case h.disconnect <- userID:
	default:
		h.log.Warn("ws disconnect queue full", "user_id", userID)
	}
}

// ConnectionCount returns the number of open connections of userID
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}
