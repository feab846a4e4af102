// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package payload

import (
	"bytes"
)

var nonFinite = [][]byte{
	[]byte("-Infinity"),
	[]byte("Infinity"),
	[]byte("NaN"),
}

// Sanitize replaces the bare tokens NaN, Infinity and -Infinity outside
// string literals with null. Python's json module emits them for float
// metrics, and they are not valid JSON. Text inside strings is untouched.
// data is returned as-is when it contains none of the tokens.
func Sanitize(data []byte) []byte {
	if !bytes.Contains(data, []byte("NaN")) && !bytes.Contains(data, []byte("Infinity")) {
		return data
	}

	out := make([]byte, 0, len(data))
	inString, escaped := false, false
	for i := 0; i < len(data); {
		c := data[i]
		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			i++
			continue
		}
		if c == '"' {
			inString = true
			out = append(out, c)
			i++
			continue
		}
		if n := nonFiniteAt(data[i:]); n > 0 {
			out = append(out, "null"...)
			i += n
			continue
		}
		out = append(out, c)
		i++
	}
	return out
}

func nonFiniteAt(b []byte) int {
	for _, tok := range nonFinite {
		if bytes.HasPrefix(b, tok) {
			return len(tok)
		}
	}
	return 0
}
