// internal/server/hub.go
package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tamzrod/trainwatch/internal/status"
)

const (
	EventStatus = "status"
	EventError  = "error"

	writeWait  = 10 * time.Second
	sendBuffer = 8
)

// Event is the websocket envelope for one notified cycle.
// On "error" events Status is the last known-good status.
type Event struct {
	Type   string        `json:"type"`
	Status status.Status `json:"status"`
	Error  string        `json:"error,omitempty"`
}

// NewEvent maps a watcher notification onto an Event.
func NewEvent(s status.Status, err error) Event {
	if err != nil {
		return Event{Type: EventError, Status: s, Error: err.Error()}
	}
	return Event{Type: EventStatus, Status: s}
}

type subscriber struct {
	conn *websocket.Conn
	send chan Event
}

// Hub fans watcher notifications out to websocket subscribers.
// A subscriber that cannot keep up is dropped; Publish never blocks on it.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	closed bool
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With("component", "events"),
		subs:   map[*subscriber]struct{}{},
	}
}

// Publish matches the watcher callback signature.
func (h *Hub) Publish(s status.Status, err error) {
	ev := NewEvent(s, err)

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		select {
		case sub.send <- ev:
		default:
			h.logger.Warn("subscriber too slow; dropping", "remote", sub.conn.RemoteAddr().String())
			go h.drop(sub)
		}
	}
}

// Subscribers reports the number of connected subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber. Later connections are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = map[*subscriber]struct{}{}
	h.closed = true
	h.mu.Unlock()

	for sub := range subs {
		close(sub.send)
	}
}

// serve upgrades the request and queues initial as the first event.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, initial Event) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sub := &subscriber{conn: c, send: make(chan Event, sendBuffer)}
	sub.send <- initial

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = c.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait),
		)
		_ = c.Close()
		return
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("subscriber connected", "remote", r.RemoteAddr)

	go h.writeLoop(sub)
	go h.readLoop(sub)
}

func (h *Hub) writeLoop(sub *subscriber) {
	defer sub.conn.Close()

	for ev := range sub.send {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteJSON(ev); err != nil {
			h.logger.Debug("websocket write failed", "error", err)
			go h.drop(sub)
			// Drain until drop closes the channel.
			for range sub.send {
			}
			return
		}
	}

	_ = sub.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
}

// readLoop discards client frames and detects disconnects.
func (h *Hub) readLoop(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			h.drop(sub)
			return
		}
	}
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()

	if ok {
		close(sub.send)
		h.logger.Info("subscriber disconnected", "remote", sub.conn.RemoteAddr().String())
	}
}
