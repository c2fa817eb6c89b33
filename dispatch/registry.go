package dispatch

import (
	"time"

	"github.com/google/uuid"

	"github.com/agentdeck/agentdeck/convo"
)

// entry is one bound session in the registry.
type entry struct {
	lastSeen time.Time
	parser   convo.Parser
	// contextID distinguishes successive lifetimes of the same session
	// id: a chunk arriving after finished re-enters classification under
	// a fresh context.
	contextID string
}

// Registry maps session ids to parser instances. Exactly one parser exists
// per active session; entries for different sessions are fully independent
// and share no mutable state.
//
// Registry methods are not locked; the Dispatcher serializes access. It is
// exported separately so tests and replay tools can drive it directly.
type Registry struct {
	entries map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Get returns the parser bound to sessionID, if any, and refreshes its
// idle timestamp.
func (r *Registry) Get(sessionID string) (convo.Parser, bool) {
	e, ok := r.entries[sessionID]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.parser, true
}

// Bind associates a parser with sessionID under a fresh context id,
// replacing any prior binding.
func (r *Registry) Bind(sessionID string, p convo.Parser) string {
	ctx := uuid.NewString()
	r.entries[sessionID] = &entry{parser: p, contextID: ctx, lastSeen: time.Now()}
	return ctx
}

// ContextID returns the context id of the session's current binding.
func (r *Registry) ContextID(sessionID string) string {
	if e, ok := r.entries[sessionID]; ok {
		return e.contextID
	}
	return ""
}

// Evict removes the session's entry. Evicting a non-existent entry is a
// no-op, not an error.
func (r *Registry) Evict(sessionID string) {
	delete(r.entries, sessionID)
}

// Len returns the number of bound sessions.
func (r *Registry) Len() int { return len(r.entries) }

// SweepIdle evicts every session idle longer than maxIdle and returns the
// evicted ids. Covers abandoned sessions that never send a finished chunk.
func (r *Registry) SweepIdle(maxIdle time.Duration) []string {
	cutoff := time.Now().Add(-maxIdle)
	var evicted []string
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}
