// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

/*
Package websocket streams replay frames to the viewers of a render session.

Each render session owns one Hub. The session's player broadcasts frames
into it and every connected Client receives them in order:

	hub := websocket.NewHub(submissionID)
	hub.SetWelcome(func() *websocket.Message {
	    return &websocket.Message{Type: websocket.MessageTypeScene, Data: info}
	})
	go hub.RunWithContext(ctx)

	upgrader := websocket.Upgrader(nil)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
	    websocket.ServeWS(hub, &upgrader, w, r)
	})

Message types:

  - scene: sent once on connect (frame and obstacle counts, obstacles)
  - frame: one frame of the replay, {"index": n, "frame": {...}}
  - loop: the replay wrapped around to frame 0
  - ping/pong: client-initiated keepalive

Viewers that cannot keep up are disconnected instead of slowing playback.
When the hub's context ends every viewer is closed; the hub can then be
run again, which is how a restarted render worker reuses it.
*/
package websocket
