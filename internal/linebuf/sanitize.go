package linebuf

import (
	"encoding/json"
	"strings"

	"github.com/agentdeck/agentdeck/convo"
)

// nodeWarnings are module-loader diagnostics the codex CLI prints to the
// same stream as its JSON events.
var nodeWarnings = []string{
	"Warning: Accessing non-existent property",
	"(Use `node --trace-warnings",
	"circular dependency",
}

// Sanitize filters one framed payload before it reaches a parser. Returns
// the line to forward and whether to forward it at all. Lines for unknown
// kinds pass through unchanged.
func Sanitize(kind convo.AgentKind, line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}

	switch kind {
	case convo.KindCodex:
		for _, w := range nodeWarnings {
			if strings.Contains(trimmed, w) {
				return "", false
			}
		}
	case convo.KindClaude:
		if strings.HasPrefix(trimmed, "\x1b") {
			return "", false
		}
		if trimmed == "[DONE]" || trimmed == "?25h" {
			return "", false
		}
		if isBareMetadata(trimmed) {
			return "", false
		}
	}
	return trimmed, true
}

// isBareMetadata reports whether a JSON object is CLI bookkeeping rather
// than a stream event: it has no "type" key but carries session metadata
// fields.
func isBareMetadata(trimmed string) bool {
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		return false
	}
	if _, ok := probe["type"]; ok {
		return false
	}
	for _, key := range []string{"mcp_commands", "mcp_servers", "session_id", "uuid"} {
		if _, ok := probe[key]; ok {
			return true
		}
	}
	return false
}
