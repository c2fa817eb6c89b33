// Package linebuf frames raw CLI output into discrete payloads and filters
// per-agent junk lines before chunks reach the parsers.
package linebuf

import "strings"

// Accumulator incrementally splits agent CLI output into discrete payloads.
//
// Agent streams often emit carriage returns instead of newlines, which
// makes standard line readers block until the command finishes. The
// accumulator collects raw chunks and emits complete payloads whenever it
// sees \r, \n or \r\n, buffering partial fragments for the next chunk.
// SSE framing is unwrapped on the way through: "data:" prefixes are
// stripped, and "[DONE]", "event:" and "id:" lines are dropped.
type Accumulator struct {
	buf string
}

// PushChunk appends a raw chunk and returns the complete payloads it
// terminated. Partial trailing data stays buffered.
func (a *Accumulator) PushChunk(chunk string) []string {
	if chunk == "" {
		return nil
	}
	a.buf += chunk

	var results []string
	start := 0
	i := 0
	for i < len(a.buf) {
		c := a.buf[i]
		if c != '\r' && c != '\n' {
			i++
			continue
		}
		if start < i {
			results = appendSegment(results, a.buf[start:i])
		}
		// Collapse runs of separators so \r\n and friends produce no
		// empty payloads.
		i++
		for i < len(a.buf) && (a.buf[i] == '\r' || a.buf[i] == '\n') {
			i++
		}
		start = i
	}
	if start > 0 {
		a.buf = a.buf[start:]
	}
	return results
}

// Flush drains the buffer and returns the final payload, if the remainder
// held one. Called when the stream ends without a trailing separator.
func (a *Accumulator) Flush() (string, bool) {
	if a.buf == "" {
		return "", false
	}
	remaining := a.buf
	a.buf = ""
	results := appendSegment(nil, remaining)
	if len(results) == 0 {
		return "", false
	}
	return results[len(results)-1], true
}

func appendSegment(results []string, segment string) []string {
	trimmed := strings.TrimSpace(segment)
	if trimmed == "" {
		return results
	}

	if rest, ok := strings.CutPrefix(trimmed, "data:"); ok {
		data := strings.TrimSpace(rest)
		if data == "" || strings.EqualFold(data, "[DONE]") {
			return results
		}
		return append(results, data)
	}

	if strings.HasPrefix(trimmed, "event:") || strings.HasPrefix(trimmed, "id:") {
		return results
	}

	return append(results, trimmed)
}
