// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package websocket

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/flockrl/internal/logging"
)

// Connection timing. A viewer that misses a pong for viewerTimeout is
// dropped; pings go out often enough to keep a healthy viewer alive.
const (
	writeTimeout   = 10 * time.Second
	viewerTimeout  = time.Minute
	pingEvery      = viewerTimeout * 9 / 10
	inboundLimit   = 4 << 10
	sendBufferSize = 256
)

var nextClientID atomic.Uint64

// Client is one viewer connection. Frames reach it through send; the hub
// owns the channel and closes it on leave.
type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewClient wraps conn for hub. IDs increase so the hub can broadcast in
// join order.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   nextClientID.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan Message, sendBufferSize),
	}
}

// ID returns the client's ordering key.
func (c *Client) ID() uint64 { return c.id }

// Start runs the reader and writer goroutines.
func (c *Client) Start() {
	go c.writeLoop()
	go c.readLoop()
}

// readLoop keeps the read deadline fresh and answers "ping" messages.
// Anything else a viewer sends is ignored.
func (c *Client) readLoop() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close() //nolint:errcheck,gosec // connection is being dropped
	}()

	c.conn.SetReadLimit(inboundLimit)
	extend := func(string) error { return c.conn.SetReadDeadline(time.Now().Add(viewerTimeout)) }
	if extend("") != nil {
		return
	}
	c.conn.SetPongHandler(extend)

	for {
		var in Message
		err := c.conn.ReadJSON(&in)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Debug().Err(err).Uint64("client_id", c.id).Msg("Viewer connection closed unexpectedly")
			}
			return
		}
		if in.Type != MessageTypePing {
			continue
		}
		select {
		case c.send <- Message{Type: MessageTypePong}:
		default: // buffer full; the viewer is behind anyway
		}
	}
}

// writeLoop drains send and pings the viewer every pingEvery.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingEvery)
	defer ticker.Stop()
	defer c.conn.Close() //nolint:errcheck // either side may close first

	for {
		select {
		case msg, open := <-c.send:
			if !open {
				c.write(websocket.CloseMessage, nil) //nolint:errcheck,gosec // best-effort close frame
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				logging.Error().Err(err).Str("message_type", msg.Type).Msg("Failed to encode viewer message")
				continue
			}
			if c.write(websocket.TextMessage, payload) != nil {
				return
			}
		case <-ticker.C:
			if c.write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

func (c *Client) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}

// Upgrader returns the upgrader for viewer connections. checkOrigin nil
// means gorilla's same-origin check.
func Upgrader(checkOrigin func(r *http.Request) bool) websocket.Upgrader {
	return websocket.Upgrader{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1 << 10,
		WriteBufferSize:  4 << 10,
		CheckOrigin:      checkOrigin,
	}
}

// ServeWS upgrades the request and attaches the viewer to hub. A hub that
// is not running refuses the viewer and the connection is closed.
func ServeWS(hub *Hub, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Debug().Err(err).Msg("Viewer upgrade failed")
		return
	}
	client := NewClient(hub, conn)
	if !hub.join(client) {
		conn.Close() //nolint:errcheck,gosec // refusing the viewer
		return
	}
	client.Start()
}
