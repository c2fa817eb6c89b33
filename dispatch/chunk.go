package dispatch

import (
	"github.com/agentdeck/agentdeck/convo"
	"github.com/agentdeck/agentdeck/timeline"
)

// StreamChunk is the inbound unit from the event-delivery collaborator. One
// session emits an ordered sequence of chunks terminated by exactly one
// chunk with Finished set, or the stream is abandoned.
//
// Ordering per session is a precondition on the delivery channel: chunks
// carry no sequence numbers, so out-of-order delivery corrupts accumulated
// state silently.
type StreamChunk struct {
	SessionID string `json:"sessionId"`
	Content   string `json:"content"`
	Finished  bool   `json:"finished"`
}

// Session status values reported on MessageUpdate.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
)

// MessageUpdate is the outbound unit pushed to the message-store
// collaborator after each processed chunk.
type MessageUpdate struct {
	SessionID string `json:"sessionId"`
	// Content is the renderable text: the full replacement when Mode is
	// ModeFull, the text to append when ModeDelta. Valid only when
	// HasContent is true; otherwise the store keeps its prior content.
	Content string `json:"content"`
	// Status is "running" or "completed".
	Status string `json:"status"`
	// Steps is the current timeline snapshot; refreshed on every routed
	// chunk even when the text did not change.
	Steps []timeline.Entry `json:"steps,omitempty"`
	// Mode tells the store how to merge Content.
	Mode convo.OutputMode `json:"-"`
	// HasContent reports whether Content carries a text change.
	HasContent bool `json:"-"`
	// IsStreaming mirrors the session's running flag.
	IsStreaming bool `json:"isStreaming"`
}

// Sink receives message updates. Implemented by the message-store
// collaborator; the dispatcher never retains updates itself.
type Sink interface {
	Apply(MessageUpdate)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(MessageUpdate)

// Apply calls f.
func (f SinkFunc) Apply(u MessageUpdate) { f(u) }
