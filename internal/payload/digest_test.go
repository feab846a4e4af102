// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package payload

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestExtractMetrics(t *testing.T) {
	tests := []struct {
		name string
		meta string
		want string // JSON of the metrics, "null" for nil
	}{
		{"score and success", `{"score":1,"success":true}`, `{"score":1,"success":true}`},
		{"snake case", `{"time_sec":12.5,"path_efficiency":0.7}`, `{"timeSec":12.5,"pathEfficiency":0.7}`},
		{"camel case", `{"timeSec":3,"pathEfficiency":0.2}`, `{"timeSec":3,"pathEfficiency":0.2}`},
		{"snake wins", `{"time_sec":1,"timeSec":2}`, `{"timeSec":1}`},
		{"null snake falls back", `{"time_sec":null,"timeSec":2}`, `{"timeSec":2}`},
		{"zero kept", `{"collisions":0,"time_sec":0}`, `{"timeSec":0,"collisions":0}`},
		{"only unknown fields", `{"seed":42}`, `null`},
		{"all null", `{"score":null,"success":null}`, `null`},
		{"empty", `{}`, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse([]byte(`{"frames":[],"metadata":` + tt.meta + `}`))
			if err != nil {
				t.Fatal(err)
			}
			got, err := json.Marshal(ExtractMetrics(p.Metadata))
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("ExtractMetrics = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractMetrics_NoMetadata(t *testing.T) {
	if ExtractMetrics(nil) != nil {
		t.Error("nil metadata should yield nil metrics")
	}
}

func TestDuration(t *testing.T) {
	if Duration(0) != nil {
		t.Error("Duration(0) should be nil")
	}
	tests := map[int]float64{1: 0.1, 3: 0.3, 10: 1, 1234: 123.4}
	for n, want := range tests {
		got := Duration(n)
		if got == nil || *got != want {
			t.Errorf("Duration(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	p, err := Parse([]byte(`{"frames":[{},{}],"metadata":{"score":0.5,"obstacles":[{},{},{}]}}`))
	if err != nil {
		t.Fatal(err)
	}
	d := Summarize(p)
	if d.FrameCount != 2 || d.ObstacleCount != 3 || !d.HasMetadata {
		t.Errorf("Summarize = %+v", d)
	}
	if d.Metrics == nil || string(d.Metrics.Score) != "0.5" {
		t.Errorf("Metrics = %+v", d.Metrics)
	}
}

func TestIndent(t *testing.T) {
	out, ok := Indent([]byte(`{"frames":[1],"metadata":{"score":NaN}}`))
	if !ok {
		t.Fatal("expected JSON to be indented")
	}
	want := "{\n  \"frames\": [\n    1\n  ],\n  \"metadata\": {\n    \"score\": null\n  }\n}"
	if string(out) != want {
		t.Errorf("Indent = %q, want %q", out, want)
	}

	raw := []byte("step 1: ok\nstep 2: collision\n")
	out, ok = Indent(raw)
	if ok {
		t.Error("plain text should not be reported as JSON")
	}
	if !strings.HasPrefix(string(out), "step 1") {
		t.Errorf("plain text altered: %q", out)
	}
}
