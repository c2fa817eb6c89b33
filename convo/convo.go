package convo

import (
	"strconv"

	"github.com/agentdeck/agentdeck/timeline"
)

// OutputMode reports the return semantics of Parser.Feed.
type OutputMode int

const (
	// ModeFull means Feed returns the entire accumulated text; callers
	// replace prior content.
	ModeFull OutputMode = iota
	// ModeDelta means Feed returns only newly produced text; callers
	// append to prior content.
	ModeDelta
)

// AgentKind tags the wire format a parser understands.
type AgentKind int

const (
	// KindPlainText is the fallback for streams that never looked
	// structured.
	KindPlainText AgentKind = iota
	// KindCodex is the Codex-style envelope/event format.
	KindCodex
	// KindClaude is the Claude-style NDJSON format.
	KindClaude
)

// String returns the lowercase kind name.
func (k AgentKind) String() string {
	switch k {
	case KindCodex:
		return "codex"
	case KindClaude:
		return "claude"
	default:
		return "plaintext"
	}
}

// Usage is the latest-wins token accounting for a session. Nil fields were
// never reported by the agent.
type Usage struct {
	InputTokens       *int64
	CachedInputTokens *int64
	OutputTokens      *int64
}

// Summary renders the one-line usage display. Missing counts render as "?".
func (u Usage) Summary() string {
	return "Usage — In: " + formatTokens(u.InputTokens) + ", Out: " + formatTokens(u.OutputTokens)
}

func formatTokens(n *int64) string {
	if n == nil {
		return "?"
	}
	return strconv.FormatInt(*n, 10)
}

// Message roles.
const (
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of the UI-friendly conversation projection. It is a
// pure read-only view derived from parser state, regenerable at any time.
type Message struct {
	Usage      *Usage
	Role       string
	Content    string
	ToolName   string
	ToolResult string
	IsError    bool
	IsThinking bool
}

// Parser is the capability contract every agent stream parser satisfies.
//
// Implementations keep all state private to the instance; no two sessions
// may share a parser.
type Parser interface {
	// Feed consumes one raw chunk and updates internal state. The string
	// is the renderable text (full or delta per Mode); ok is false when
	// the chunk produced no renderable text change, in which case callers
	// keep prior content but should still refresh side-channel state such
	// as Steps. Feed never fails: malformed JSON degrades to plain-text
	// accumulation rather than being dropped.
	Feed(raw string) (out string, ok bool)

	// Messages projects accumulated state to the conversation view.
	// Side-effect free; callable any number of times.
	Messages() []Message

	// Steps returns the current step timeline snapshot.
	Steps() []timeline.Entry

	// Mode reports the Feed return semantics.
	Mode() OutputMode

	// Kind reports the wire format this parser understands.
	Kind() AgentKind
}
