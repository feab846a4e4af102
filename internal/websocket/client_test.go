// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// newViewerServer serves hub on an httptest server and returns its ws URL.
func newViewerServer(t *testing.T, hub *Hub) string {
	t.Helper()
	upgrader := Upgrader(func(*http.Request) bool { return true })
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, &upgrader, w, r)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestClient_ReceivesBroadcast(t *testing.T) {
	hub := NewHub("sub-test")
	runHub(t, hub)
	conn := dial(t, newViewerServer(t, hub))
	waitForCount(t, hub, 1)

	hub.Broadcast(MessageTypeFrame, map[string]int{"index": 0})
	if msg := readMessage(t, conn); msg.Type != MessageTypeFrame {
		t.Errorf("Type = %q, want frame", msg.Type)
	}
}

func TestClient_PingPong(t *testing.T) {
	hub := NewHub("sub-test")
	runHub(t, hub)
	conn := dial(t, newViewerServer(t, hub))
	waitForCount(t, hub, 1)

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatal(err)
	}
	if msg := readMessage(t, conn); msg.Type != MessageTypePong {
		t.Errorf("Type = %q, want pong", msg.Type)
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub := NewHub("sub-test")
	runHub(t, hub)
	conn := dial(t, newViewerServer(t, hub))
	waitForCount(t, hub, 1)

	conn.Close()
	waitForCount(t, hub, 0)
}

func TestClient_ClosedWhenHubStops(t *testing.T) {
	hub := NewHub("sub-test")
	cancel, done := runHub(t, hub)
	conn := dial(t, newViewerServer(t, hub))
	waitForCount(t, hub, 1)

	cancel()
	<-done

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("ReadMessage() succeeded, want the connection closed")
	}
}

func TestServeWS_HubNotRunning(t *testing.T) {
	hub := NewHub("sub-test")
	conn := dial(t, newViewerServer(t, hub))

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected the connection to be closed when the hub is not running")
	}
}

func TestClient_Constants(t *testing.T) {
	if pingEvery >= viewerTimeout {
		t.Errorf("pingEvery %v must be shorter than viewerTimeout %v", pingEvery, viewerTimeout)
	}
	if writeTimeout >= viewerTimeout {
		t.Errorf("writeTimeout %v must be shorter than viewerTimeout %v", writeTimeout, viewerTimeout)
	}
}
