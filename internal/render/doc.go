// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

/*
Package render defines the renderer collaborator used by render sessions
and provides the built-in frame replay renderer.

Starting a session is three steps, each with its own failure:

	scene, err := renderer.Load(ctx, id, path) // ErrSceneUnavailable
	worker, err := breaker.Bind(scene, addr)   // ErrBindFailed, ErrBreakerOpen
	go worker.Serve(ctx)                       // runs until ctx is done

Load and Bind are synchronous so the caller learns about a bad payload or a
taken port before it reports success. Serve is what the supervisor runs and
restarts.

ReplayRenderer serves, per session:

	GET /                       scene info
	GET /frames?offset=&limit=  a page of frames
	GET /frames/{index}         one frame
	GET /obstacles              the obstacle list
	GET /metadata               the payload's metadata block
	GET /ws                     live replay, one frame per interval, looping
*/
package render
