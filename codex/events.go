package codex

// Envelope is the outer JSON wrapper carrying a raw content string from the
// transport layer. A chunk that fails to parse as an Envelope is treated as
// opaque text.
type Envelope struct {
	Content string `json:"content"`
}

// Event type discriminators. Unknown types are ignored without error.
const (
	EventTurnCompleted = "turn.completed"
	EventItemCompleted = "item.completed"
)

// Event is the inner JSON object parsed from Envelope.Content.
type Event struct {
	Item  *Item  `json:"item,omitempty"`
	Usage *Usage `json:"usage,omitempty"`
	Type  string `json:"type"`
}

// Item type discriminators.
const (
	ItemAgentMessage     = "agent_message"
	ItemReasoning        = "reasoning"
	ItemCommandExecution = "command_execution"
	ItemFileChange       = "file_change"
)

// Item is the payload of an item.completed event: a tagged union over
// agent_message, reasoning, command_execution, and file_change. ID is stable
// and required for command_execution/file_change; the remaining fields are
// format-specific.
type Item struct {
	Type             string       `json:"type"`
	ID               string       `json:"id,omitempty"`
	Text             string       `json:"text,omitempty"`
	Command          string       `json:"command,omitempty"`
	AggregatedOutput string       `json:"aggregated_output,omitempty"`
	Status           string       `json:"status,omitempty"`
	Changes          []FileChange `json:"changes,omitempty"`
}

// FileChange is one entry of a file_change item.
type FileChange struct {
	Path string `json:"path"`
	Kind string `json:"kind"` // "add", "delete", or a modification
}

// Usage carries token counts from a turn.completed event. Missing counts
// stay nil and render as "?".
type Usage struct {
	InputTokens       *int64 `json:"input_tokens,omitempty"`
	CachedInputTokens *int64 `json:"cached_input_tokens,omitempty"`
	OutputTokens      *int64 `json:"output_tokens,omitempty"`
}

// Item status values observed on the wire. Anything else, including an
// absent status, maps to in_progress.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)
