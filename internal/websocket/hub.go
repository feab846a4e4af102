// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/flockrl/internal/logging"
	"github.com/tomtom215/flockrl/internal/metrics"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal path: the render session
	// was stopped or the process is exiting.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline means the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types exchanged with viewers.
const (
	MessageTypeScene = "scene"
	MessageTypeFrame = "frame"
	MessageTypeLoop  = "loop"
	MessageTypePing  = "ping"
	MessageTypePong  = "pong"
)

// Message is one websocket message.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans messages out to the viewers of one render session.
//
// A hub can be run again after RunWithContext returns; the viewers of the
// previous run are disconnected when it stops.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	// quit is closed whenever the hub is not running, so departing
	// clients never block on Unregister.
	quit chan struct{}

	welcome func() *Message
	log     zerolog.Logger
}

// NewHub creates a hub. name identifies it in logs.
func NewHub(name string) *Hub {
	quit := make(chan struct{})
	close(quit)
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		quit:       quit,
		log:        logging.With().Str("component", "websocket-hub").Str("hub", name).Logger(),
	}
}

// SetWelcome sets a function whose message is sent to every viewer as soon
// as it registers. Must be called before RunWithContext.
func (h *Hub) SetWelcome(fn func() *Message) {
	h.welcome = fn
}

// RunWithContext runs the hub until ctx is done, then closes every viewer
// and returns ctx.Err().
//
// Lifecycle events are drained before broadcasts so client state is
// settled before any message is delivered.
func (h *Hub) RunWithContext(ctx context.Context) error {
	h.mu.Lock()
	h.quit = make(chan struct{})
	quit := h.quit
	h.mu.Unlock()
	defer close(quit)

	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	n := len(h.clients)
	h.mu.Unlock()
	metrics.TrackViewer(true)

	if h.welcome != nil {
		if msg := h.welcome(); msg != nil {
			select {
			case client.send <- *msg:
			default:
			}
		}
	}
	h.log.Debug().Int("total_clients", n).Msg("Viewer connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		metrics.TrackViewer(false)
		h.log.Debug().Int("total_clients", n).Msg("Viewer disconnected")
	}
}

// join registers client. It returns false if the hub is not running.
func (h *Hub) join(client *Client) bool {
	h.mu.RLock()
	quit := h.quit
	h.mu.RUnlock()
	select {
	case h.Register <- client:
		return true
	case <-quit:
		return false
	}
}

// leave unregisters client, or does nothing if the hub is not running.
func (h *Hub) leave(client *Client) {
	h.mu.RLock()
	quit := h.quit
	h.mu.RUnlock()
	select {
	case h.Unregister <- client:
	case <-quit:
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	n := h.closeAllClients()
	h.log.Info().
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", n).
		Msg("Websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// sortedClients must be called with h.mu held.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToClients delivers message in client ID order. Viewers whose
// send buffer is full are dropped rather than allowed to stall playback.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var dropped int
	for _, client := range h.sortedClients() {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
			dropped++
		}
	}
	for i := 0; i < dropped; i++ {
		metrics.TrackViewer(false)
	}
	if dropped > 0 {
		h.log.Warn().Int("dropped", dropped).Msg("Dropped slow viewers")
	}
}

func (h *Hub) closeAllClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.sortedClients()
	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
		metrics.TrackViewer(false)
	}
	return len(clients)
}

// Broadcast queues a message for every viewer. It never blocks; false
// means the queue was full and the message was dropped.
func (h *Hub) Broadcast(messageType string, data interface{}) bool {
	select {
	case h.broadcast <- Message{Type: messageType, Data: data}:
		return true
	default:
		h.log.Warn().Str("message_type", messageType).Msg("Broadcast channel full, dropping message")
		return false
	}
}

// GetClientCount returns the number of connected viewers.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage encodes msg as JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
