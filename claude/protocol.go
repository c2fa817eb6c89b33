package claude

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownLineType marks a structurally valid NDJSON line whose type is
// not part of the recognized vocabulary. Callers skip these rather than
// degrading them to plain text.
var ErrUnknownLineType = errors.New("unknown line type")

// RawLine is used for initial type discrimination of NDJSON lines.
type RawLine struct {
	Type    string `json:"type"`
	Subtype string `json:"subtype,omitempty"`
}

// ContentBlock is one block within an assistant or user message.
// Example: {"type":"text","text":"..."}
// Example: {"type":"thinking","thinking":"..."}
// Example: {"type":"tool_use","id":"toolu_1","name":"Bash","input":{"command":"ls"}}
// Example: {"type":"tool_result","tool_use_id":"toolu_1","content":"a.txt","is_error":false}
type ContentBlock struct {
	Input     map[string]interface{} `json:"input,omitempty"`
	Content   interface{}            `json:"content,omitempty"`
	Type      string                 `json:"type"`
	Text      string                 `json:"text,omitempty"`
	Thinking  string                 `json:"thinking,omitempty"`
	ID        string                 `json:"id,omitempty"`
	Name      string                 `json:"name,omitempty"`
	ToolUseID string                 `json:"tool_use_id,omitempty"`
	IsError   bool                   `json:"is_error,omitempty"`
}

// MessageInner is the inner message object of an assistant or user line.
type MessageInner struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// AssistantLine represents an assistant message.
// Example: {"type":"assistant","message":{"role":"assistant","content":[...]},"session_id":"..."}
type AssistantLine struct {
	Type      string       `json:"type"`
	Message   MessageInner `json:"message"`
	SessionID string       `json:"session_id"`
}

// UserLine carries auto-executed tool results back from the CLI.
// Example: {"type":"user","message":{"role":"user","content":[{"type":"tool_result",...}]}}
type UserLine struct {
	Type      string       `json:"type"`
	Message   MessageInner `json:"message"`
	SessionID string       `json:"session_id"`
}

// UsageLine carries token counts on a result line.
type UsageLine struct {
	InputTokens          *int64 `json:"input_tokens,omitempty"`
	CacheReadInputTokens *int64 `json:"cache_read_input_tokens,omitempty"`
	OutputTokens         *int64 `json:"output_tokens,omitempty"`
}

// ResultLine represents the terminal result of a session.
// Example: {"type":"result","subtype":"success","duration_ms":1234,"is_error":false,"result":"...","usage":{...}}
type ResultLine struct {
	Usage      *UsageLine `json:"usage,omitempty"`
	Type       string     `json:"type"`
	Subtype    string     `json:"subtype"`
	Result     string     `json:"result"`
	SessionID  string     `json:"session_id"`
	DurationMs int64      `json:"duration_ms"`
	IsError    bool       `json:"is_error"`
}

// SystemLine represents a system metadata line (init and friends).
type SystemLine struct {
	Type      string `json:"type"`
	Subtype   string `json:"subtype"`
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
	CWD       string `json:"cwd"`
}

// Line is the union type returned by ParseLine.
type Line interface {
	lineType() string
}

func (l *AssistantLine) lineType() string { return "assistant" }
func (l *UserLine) lineType() string      { return "user" }
func (l *ResultLine) lineType() string    { return "result" }
func (l *SystemLine) lineType() string    { return "system" }

// ParseLine parses a raw NDJSON line into a typed line.
func ParseLine(line []byte) (Line, error) {
	var raw RawLine
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse line type: %w", err)
	}

	switch raw.Type {
	case "assistant":
		var l AssistantLine
		if err := json.Unmarshal(line, &l); err != nil {
			return nil, fmt.Errorf("failed to parse assistant line: %w", err)
		}
		return &l, nil

	case "user":
		var l UserLine
		if err := json.Unmarshal(line, &l); err != nil {
			return nil, fmt.Errorf("failed to parse user line: %w", err)
		}
		return &l, nil

	case "result":
		var l ResultLine
		if err := json.Unmarshal(line, &l); err != nil {
			return nil, fmt.Errorf("failed to parse result line: %w", err)
		}
		return &l, nil

	case "system":
		var l SystemLine
		if err := json.Unmarshal(line, &l); err != nil {
			return nil, fmt.Errorf("failed to parse system line: %w", err)
		}
		return &l, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownLineType, raw.Type)
	}
}

// ResultText extracts the textual content of a tool_result block. The wire
// sends either a plain string or a list of content blocks.
func ResultText(content interface{}) string {
	switch v := content.(type) {
	case string:
		return v
	case []interface{}:
		text := ""
		for _, item := range v {
			block, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if t, ok := block["text"].(string); ok {
				text += t
			}
		}
		return text
	default:
		return ""
	}
}
