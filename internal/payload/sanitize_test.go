// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package payload

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"untouched", `{"a":1}`, `{"a":1}`},
		{"nan value", `{"a":NaN}`, `{"a":null}`},
		{"infinities in list", `[Infinity,-Infinity, NaN]`, `[null,null, null]`},
		{"inside string", `{"s":"NaN and Infinity"}`, `{"s":"NaN and Infinity"}`},
		{"escaped quote", `{"s":"a \"NaN\"","v":NaN}`, `{"s":"a \"NaN\"","v":null}`},
		{"key named NaN", `{"NaN":Infinity}`, `{"NaN":null}`},
		{"escaped backslash before quote", `{"s":"x\\","v":-Infinity}`, `{"s":"x\\","v":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Sanitize([]byte(tt.in))); got != tt.want {
				t.Errorf("Sanitize(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
