// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

// Package payload defines the schema of an uploaded simulation log and the
// values derived from it.
//
// A payload is a JSON object:
//
//	{
//	  "frames":   [ {...}, {...} ],          // required, one entry per time step
//	  "metadata": {                          // optional
//	    "score": 0.93, "success": true,
//	    "time_sec": 12.4,                    // or timeSec
//	    "collisions": 0, "smoothness": 0.8,
//	    "path_efficiency": 0.7,              // or pathEfficiency
//	    "obstacles": [...]                   // or environment.obstacles
//	  }
//	}
//
// Parse is the only entry point that turns bytes into a Payload; everything
// downstream works on the typed form. Frames are kept as raw JSON because
// their shape belongs to the simulator, not to this service.
package payload
