// Package fanout pushes reconciliation results to live WebSocket
// subscribers. Delivery is best effort: no buffering for absent subscribers,
// and a slow or broken subscriber is dropped, never waited on.
package fanout

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	sendQueueSize = 16
	writeTimeout  = 5 * time.Second
)

type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: map[*Client]struct{}{}}
}

// Add registers a connection, sends the greeting frame and starts the
// client's pumps. The hub owns the connection from here on.
func (h *Hub) Add(conn *websocket.Conn) *Client {
	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendQueueSize),
	}

	// The greeting goes onto the queue before the client becomes visible to
	// Broadcast, so it is always the first frame a subscriber receives.
	greeting, _ := json.Marshal(Message{
		Type:      "connection",
		Message:   "Connected to real-time attendance",
		Timestamp: time.Now().Format(time.RFC3339),
	})
	client.enqueue(greeting)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return client
	}
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	go client.writePump()
	go client.readPump()

	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("subscriber connected")
	return client
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
	}
	h.mu.Unlock()

	if ok {
		client.close()
	}
}

// Broadcast delivers a message to every live subscriber. Each delivery is an
// enqueue onto that subscriber's bounded queue; a full queue drops the
// subscriber. No lock is held across the enqueues.
func (h *Hub) Broadcast(message Message) {
	payload, err := json.Marshal(message)
	if err != nil {
		log.Err(err).Msg("failed to marshal broadcast")
		return
	}

	h.mu.Lock()
	targets := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		targets = append(targets, client)
	}
	h.mu.Unlock()

	for _, client := range targets {
		if !client.enqueue(payload) {
			log.Warn().Msg("dropping slow subscriber")
			h.remove(client)
		}
	}
}

// Count reports the number of live subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll closes every subscriber connection and clears the set. The hub is
// unusable afterwards; lifecycle start creates a fresh one.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.clients = map[*Client]struct{}{}
	h.closed = true
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
}

// Message is the frame pushed to subscribers.
type Message struct {
	Type      string      `json:"type"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}
