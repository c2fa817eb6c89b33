// Package dispatch routes stream chunks from the event-delivery channel to
// per-session parser instances and pushes the resulting conversation state
// to the message-store collaborator.
//
// Per session the dispatcher moves through four states: no parser, then
// classifying on the first chunk, then active with a parser bound, then
// finished once the terminal chunk is processed and the parser evicted.
// Finished is terminal: a chunk arriving later under the same session id
// belongs to a new session context and re-enters classification.
package dispatch

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/agentdeck/agentdeck/claude"
	"github.com/agentdeck/agentdeck/codex"
	"github.com/agentdeck/agentdeck/convo"
)

// Classifier decides which wire format a structured first chunk belongs to.
type Classifier func(content string) convo.AgentKind

// Factory builds a parser instance for a classified kind.
type Factory func(kind convo.AgentKind) convo.Parser

// DefaultClassifier discriminates on JSON shape: a top-level "type" key
// marks a Claude NDJSON line, a bare "content" envelope marks Codex.
func DefaultClassifier(content string) convo.AgentKind {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &probe); err == nil {
		if _, ok := probe["type"]; ok {
			return convo.KindClaude
		}
		if _, ok := probe["content"]; ok {
			return convo.KindCodex
		}
	}
	return convo.KindCodex
}

// DefaultFactory builds the stock parser for each kind.
func DefaultFactory(kind convo.AgentKind) convo.Parser {
	switch kind {
	case convo.KindClaude:
		return claude.New()
	default:
		return codex.New()
	}
}

// runner is implemented by parsers that carry a streaming/running flag
// (currently the claude variant).
type runner interface {
	Running() bool
}

// Dispatcher is the chunk router. All mutation happens under one mutex so
// the engine also works when the host delivers chunks from multiple
// goroutines; cross-session interleaving needs no further coordination
// since sessions never share state.
type Dispatcher struct {
	sink      Sink
	reg       *Registry
	classify  Classifier
	factory   Factory
	kinds     map[string]convo.AgentKind // explicit per-session overrides
	streaming map[string]bool            // announcement toggles for unbound sessions
	mu        sync.Mutex
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClassifier replaces the format classifier.
func WithClassifier(c Classifier) Option {
	return func(d *Dispatcher) { d.classify = c }
}

// WithFactory replaces the parser factory.
func WithFactory(f Factory) Option {
	return func(d *Dispatcher) { d.factory = f }
}

// New returns a dispatcher pushing updates to sink.
func New(sink Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sink:      sink,
		reg:       NewRegistry(),
		classify:  DefaultClassifier,
		factory:   DefaultFactory,
		kinds:     make(map[string]convo.AgentKind),
		streaming: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry exposes the session registry for inspection.
func (d *Dispatcher) Registry() *Registry { return d.reg }

// SetKind pins the parser variant for a session before its first chunk,
// bypassing content sniffing. Resolved once at session creation by the
// component that owns sessions.
func (d *Dispatcher) SetKind(sessionID string, kind convo.AgentKind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kinds[sessionID] = kind
}

// Handle routes one chunk. It never fails: unparseable content degrades to
// plain text inside the parser, and every processed chunk produces exactly
// one sink update.
func (d *Dispatcher) Handle(chunk StreamChunk) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sessionID := chunk.SessionID
	p, bound := d.reg.Get(sessionID)
	trimmed := strings.TrimSpace(chunk.Content)

	// Announcement chunks bypass parser creation entirely; for unbound
	// sessions they only toggle the streaming flag.
	if !bound && strings.HasPrefix(trimmed, claude.AnnouncementPrefix) {
		d.streaming[sessionID] = !d.streaming[sessionID]
		d.sink.Apply(MessageUpdate{
			SessionID:   sessionID,
			Mode:        convo.ModeDelta,
			IsStreaming: d.streaming[sessionID] && !chunk.Finished,
			Status:      statusFor(chunk),
		})
		if chunk.Finished {
			d.finishLocked(sessionID)
		}
		return
	}

	if !bound {
		// Sticky decision: once a session is classified as structured,
		// later plain-looking chunks still route through its parser.
		// Until then plain chunks pass through as appended text.
		if !looksStructured(trimmed) {
			d.sink.Apply(MessageUpdate{
				SessionID:   sessionID,
				Content:     chunk.Content,
				HasContent:  trimmed != "",
				Mode:        convo.ModeDelta,
				IsStreaming: !chunk.Finished,
				Status:      statusFor(chunk),
			})
			if chunk.Finished {
				d.finishLocked(sessionID)
			}
			return
		}

		kind, pinned := d.kinds[sessionID]
		if !pinned {
			kind = d.classify(chunk.Content)
		}
		p = d.factory(kind)
		ctx := d.reg.Bind(sessionID, p)
		slog.Debug("parser bound", "session_id", sessionID, "kind", kind.String(), "context_id", ctx)
	}

	out, ok := p.Feed(chunk.Content)

	streaming := !chunk.Finished
	if r, isRunner := p.(runner); isRunner {
		streaming = streaming && r.Running()
	}

	// Steps are refreshed on every routed chunk, text change or not.
	d.sink.Apply(MessageUpdate{
		SessionID:   sessionID,
		Content:     out,
		HasContent:  ok,
		Mode:        p.Mode(),
		Steps:       p.Steps(),
		IsStreaming: streaming,
		Status:      statusFor(chunk),
	})

	if chunk.Finished {
		d.finishLocked(sessionID)
	}
}

// Cancel evicts an abandoned session that will never send a finished
// chunk. Idempotent: cancelling an unknown session is a no-op.
func (d *Dispatcher) Cancel(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finishLocked(sessionID)
}

// Sweep evicts sessions idle longer than maxIdle and returns their ids.
func (d *Dispatcher) Sweep(maxIdle time.Duration) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	evicted := d.reg.SweepIdle(maxIdle)
	for _, id := range evicted {
		delete(d.streaming, id)
		slog.Debug("session swept", "session_id", id)
	}
	return evicted
}

// finishLocked performs the unconditional, idempotent eviction shared by
// finished handling and Cancel.
func (d *Dispatcher) finishLocked(sessionID string) {
	d.reg.Evict(sessionID)
	delete(d.streaming, sessionID)
}

// looksStructured reports whether a chunk looks like a stream envelope.
func looksStructured(trimmed string) bool {
	return strings.HasPrefix(trimmed, "{") || strings.Contains(trimmed, `"type"`)
}

func statusFor(chunk StreamChunk) string {
	if chunk.Finished {
		return StatusCompleted
	}
	return StatusRunning
}
