// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package main

import (
	"net/http/httptest"
	"testing"
)

func TestNewOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		host    string
		origin  string
		want    bool
	}{
		{"no origin header", []string{"http://localhost:3000"}, "127.0.0.1:8050", "", true},
		{"listed origin", []string{"http://localhost:3000"}, "127.0.0.1:8050", "http://localhost:3000", true},
		{"listed with trailing slash", []string{"http://localhost:3000/"}, "127.0.0.1:8050", "http://LOCALHOST:3000", true},
		{"same host", nil, "127.0.0.1:8050", "http://127.0.0.1:8050", true},
		{"foreign origin", []string{"http://localhost:3000"}, "127.0.0.1:8050", "https://evil.example", false},
		{"wildcard", []string{"*"}, "127.0.0.1:8050", "https://anything.example", true},
		{"unparseable origin", nil, "127.0.0.1:8050", "://", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := newOriginChecker(tt.allowed)
			req := httptest.NewRequest("GET", "http://"+tt.host+"/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := check(req); got != tt.want {
				t.Errorf("check(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}
