// Package timeline models the lifecycle of tool-invocation steps and the
// append-only event log used to reconstruct a chat timeline.
//
// Steps are identified by the upstream item id: feeding a second update for
// an existing id mutates the entry in place (upsert), it never duplicates.
// An id, once created, is never removed, only transitioned or
// detail-updated. The event log records assistant text, thinking text, and
// tool events in arrival order so a conversation view can be regenerated
// from accumulated state at any time.
package timeline

// Status is the lifecycle state of a step.
type Status int

const (
	// StatusPending means the step is known but has not started.
	StatusPending Status = iota
	// StatusInProgress means the step is currently executing.
	StatusInProgress
	// StatusCompleted means the step finished successfully.
	StatusCompleted
	// StatusFailed means the step finished with an error.
	StatusFailed
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Marker returns the single-rune display prefix for a step line.
func (s Status) Marker() string {
	switch s {
	case StatusFailed:
		return "✖"
	case StatusCompleted:
		return "✓"
	default:
		return "…"
	}
}

// Entry is one step in the timeline.
type Entry struct {
	// ID is the upstream item id; identity for upserts.
	ID string
	// Label is the short display line (e.g. the shell command).
	Label string
	// Detail is the optional multi-line body (e.g. a fenced transcript).
	Detail string
	// Status is the current lifecycle state.
	Status Status
}

// EventKind discriminates between timeline event kinds.
type EventKind int

const (
	// KindAssistant is agent-authored response text.
	KindAssistant EventKind = iota
	// KindThinking is reasoning text.
	KindThinking
	// KindTool is a tool invocation with its result detail.
	KindTool
)

// Event is one entry of the arrival-order event log.
type Event struct {
	Kind     EventKind
	Text     string
	ToolName string
	Detail   string
	IsError  bool
}

// Timeline accumulates steps and events for one session.
//
// The zero value is not usable; construct with New. Timeline is not safe
// for concurrent use; each parser instance owns exactly one.
type Timeline struct {
	events []Event
	steps  []Entry
	index  map[string]int // step ID → position in steps
}

// New returns an empty timeline.
func New() *Timeline {
	return &Timeline{index: make(map[string]int)}
}

// AppendAssistant records agent response text in the event log.
func (t *Timeline) AppendAssistant(text string) {
	t.events = append(t.events, Event{Kind: KindAssistant, Text: text})
}

// AppendThinking records reasoning text in the event log.
func (t *Timeline) AppendThinking(text string) {
	t.events = append(t.events, Event{Kind: KindThinking, Text: text})
}

// AppendTool records a tool invocation in the event log.
func (t *Timeline) AppendTool(name, detail string, isError bool) {
	t.events = append(t.events, Event{Kind: KindTool, ToolName: name, Detail: detail, IsError: isError})
}

// Upsert inserts the entry or, when its ID already exists, overwrites the
// existing entry in place preserving arrival order.
func (t *Timeline) Upsert(e Entry) {
	if i, ok := t.index[e.ID]; ok {
		t.steps[i] = e
		return
	}
	t.index[e.ID] = len(t.steps)
	t.steps = append(t.steps, e)
}

// Step returns the entry for id, if present.
func (t *Timeline) Step(id string) (Entry, bool) {
	i, ok := t.index[id]
	if !ok {
		return Entry{}, false
	}
	return t.steps[i], true
}

// Steps returns a copy of the ordered step list.
func (t *Timeline) Steps() []Entry {
	out := make([]Entry, len(t.steps))
	copy(out, t.steps)
	return out
}

// Events returns a copy of the arrival-order event log.
func (t *Timeline) Events() []Event {
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}
