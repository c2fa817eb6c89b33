package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdeck/agentdeck/claude"
	"github.com/agentdeck/agentdeck/convo"
)

type captureSink struct {
	updates []MessageUpdate
}

func (s *captureSink) Apply(u MessageUpdate) { s.updates = append(s.updates, u) }

func (s *captureSink) last(t *testing.T) MessageUpdate {
	t.Helper()
	require.NotEmpty(t, s.updates)
	return s.updates[len(s.updates)-1]
}

const codexMessageChunk = `{"content":"{\"type\":\"item.completed\",\"item\":{\"type\":\"agent_message\",\"text\":\"hi\"}}"}`

func TestHandleClassifiesCodexEnvelope(t *testing.T) {
	sink := &captureSink{}
	d := New(sink)

	d.Handle(StreamChunk{SessionID: "s1", Content: codexMessageChunk})

	require.Equal(t, 1, d.Registry().Len())
	u := sink.last(t)
	assert.True(t, u.HasContent)
	assert.Equal(t, "hi", u.Content)
	assert.Equal(t, convo.ModeFull, u.Mode)
	assert.Equal(t, StatusRunning, u.Status)
	assert.True(t, u.IsStreaming)
}

func TestHandleClassifiesClaudeLine(t *testing.T) {
	sink := &captureSink{}
	d := New(sink)

	d.Handle(StreamChunk{
		SessionID: "s1",
		Content:   `{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"hello"}]}}`,
	})

	u := sink.last(t)
	assert.Equal(t, convo.ModeDelta, u.Mode)
	assert.Equal(t, "hello", u.Content)
}

func TestHandlePlainTextNeverBinds(t *testing.T) {
	sink := &captureSink{}
	d := New(sink)

	d.Handle(StreamChunk{SessionID: "s1", Content: "compiling..."})
	d.Handle(StreamChunk{SessionID: "s1", Content: "still compiling..."})

	assert.Equal(t, 0, d.Registry().Len(), "plain text must not create a parser")
	require.Len(t, sink.updates, 2)
	assert.Equal(t, "compiling...", sink.updates[0].Content)
	assert.Equal(t, convo.ModeDelta, sink.updates[0].Mode)
}

func TestHandleStickyClassification(t *testing.T) {
	sink := &captureSink{}
	d := New(sink)

	d.Handle(StreamChunk{SessionID: "s1", Content: codexMessageChunk})
	// A plain-looking chunk after classification still routes through the
	// bound parser and lands in its fallback text bucket.
	d.Handle(StreamChunk{SessionID: "s1", Content: "raw progress line"})

	u := sink.last(t)
	assert.Equal(t, convo.ModeFull, u.Mode)
	assert.Equal(t, "hi\n\nraw progress line", u.Content)
	assert.Equal(t, 1, d.Registry().Len())
}

func TestHandleStepsRefreshWithoutTextChange(t *testing.T) {
	sink := &captureSink{}
	d := New(sink)

	// tool_use produces no text but must still refresh steps.
	d.Handle(StreamChunk{
		SessionID: "s1",
		Content:   `{"type":"assistant","message":{"role":"assistant","content":[{"type":"tool_use","id":"t1","name":"Bash","input":{"command":"ls"}}]}}`,
	})

	u := sink.last(t)
	assert.False(t, u.HasContent)
	require.Len(t, u.Steps, 1)
	assert.Equal(t, "Bash: ls", u.Steps[0].Label)
}

func TestHandleEvictionOnFinished(t *testing.T) {
	sink := &captureSink{}
	d := New(sink)

	d.Handle(StreamChunk{SessionID: "s1", Content: codexMessageChunk})
	d.Handle(StreamChunk{SessionID: "s1", Content: "", Finished: true})

	assert.Equal(t, 0, d.Registry().Len())
	u := sink.last(t)
	assert.Equal(t, StatusCompleted, u.Status)
	assert.False(t, u.IsStreaming)
}

func TestHandleFreshContextAfterFinished(t *testing.T) {
	sink := &captureSink{}
	d := New(sink)

	d.Handle(StreamChunk{SessionID: "s1", Content: codexMessageChunk})
	first := d.Registry().ContextID("s1")
	d.Handle(StreamChunk{SessionID: "s1", Content: "", Finished: true})

	// Same session id, new context: accumulated state must not resume.
	d.Handle(StreamChunk{SessionID: "s1", Content: codexMessageChunk})
	second := d.Registry().ContextID("s1")

	assert.NotEqual(t, first, second)
	u := sink.last(t)
	assert.Equal(t, "hi", u.Content, "old content must not leak into the new context")
}

func TestCancelIsIdempotent(t *testing.T) {
	sink := &captureSink{}
	d := New(sink)

	d.Handle(StreamChunk{SessionID: "s1", Content: codexMessageChunk})
	d.Cancel("s1")
	assert.Equal(t, 0, d.Registry().Len())

	// Cancelling again, or cancelling a never-seen session, is a no-op.
	d.Cancel("s1")
	d.Cancel("ghost")
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	sink := &captureSink{}
	d := New(sink)

	d.Handle(StreamChunk{SessionID: "stale", Content: codexMessageChunk})
	d.Handle(StreamChunk{SessionID: "fresh", Content: codexMessageChunk})

	evicted := d.Sweep(0) // everything is idle relative to a zero threshold
	assert.ElementsMatch(t, []string{"stale", "fresh"}, evicted)
	assert.Equal(t, 0, d.Registry().Len())

	assert.Empty(t, d.Sweep(time.Hour))
}

func TestAnnouncementBypassesParserCreation(t *testing.T) {
	sink := &captureSink{}
	d := New(sink)

	d.Handle(StreamChunk{SessionID: "s1", Content: claude.AnnouncementPrefix + " waiting"})

	assert.Equal(t, 0, d.Registry().Len())
	u := sink.last(t)
	assert.False(t, u.HasContent)
	assert.True(t, u.IsStreaming)

	d.Handle(StreamChunk{SessionID: "s1", Content: claude.AnnouncementPrefix})
	assert.False(t, sink.last(t).IsStreaming, "second announcement toggles the flag back")
}

func TestSetKindPinsVariant(t *testing.T) {
	sink := &captureSink{}
	d := New(sink)

	// Without the pin this chunk would classify as codex (bare content
	// envelope, no type key).
	d.SetKind("s1", convo.KindClaude)
	d.Handle(StreamChunk{SessionID: "s1", Content: `{"content":"ignored"}`})

	assert.Equal(t, convo.ModeDelta, sink.last(t).Mode)
}

func TestDefaultClassifier(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    convo.AgentKind
	}{
		{"codex envelope", `{"content":"{}"}`, convo.KindCodex},
		{"claude typed line", `{"type":"assistant"}`, convo.KindClaude},
		{"unparseable", `{broken`, convo.KindCodex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultClassifier(tt.content))
		})
	}
}

func TestRegistryEvictUnknownIsNoOp(t *testing.T) {
	r := NewRegistry()
	r.Evict("missing")
	assert.Equal(t, 0, r.Len())
}
