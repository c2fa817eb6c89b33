// Package codex parses the Codex CLI event stream into renderable
// conversation state.
//
// The wire format is doubly wrapped: each chunk is an outer Envelope whose
// content field holds a JSON-encoded Event. Either level may fail to parse;
// in that case the raw text is accumulated as a plain message so malformed
// data degrades to a readable transcript rather than vanishing.
package codex

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/agentdeck/agentdeck/convo"
	"github.com/agentdeck/agentdeck/timeline"
)

// Parser accumulates conversation state for one Codex session. It is a
// full-replace parser: every successful Feed returns the entire formatted
// output rebuilt from accumulated state.
//
// Not safe for concurrent use; the dispatcher serializes chunks per session.
type Parser struct {
	turnAnchor time.Time
	usage      *convo.Usage
	tl         *timeline.Timeline
	reasoning  []string
	messages   []string
}

// New returns an empty Codex parser.
func New() *Parser {
	return &Parser{tl: timeline.New(), turnAnchor: time.Now()}
}

// Mode reports full-replace output semantics.
func (p *Parser) Mode() convo.OutputMode { return convo.ModeFull }

// Kind reports the Codex wire format.
func (p *Parser) Kind() convo.AgentKind { return convo.KindCodex }

// TurnAnchor returns the time of the last completed turn, for relative-time
// display by the caller.
func (p *Parser) TurnAnchor() time.Time { return p.turnAnchor }

// Feed consumes one raw chunk. It never fails: chunks that parse at neither
// the envelope nor the event level are appended to the plain-text message
// bucket. ok is false only when the chunk was a recognized no-op (an
// ignored event or item type with no renderable change).
func (p *Parser) Feed(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return p.buildOutput(), true
	}

	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		p.appendMessage(raw)
		return p.buildOutput(), true
	}

	if strings.TrimSpace(env.Content) == "" {
		return p.buildOutput(), true
	}

	var ev Event
	if err := json.Unmarshal([]byte(env.Content), &ev); err != nil {
		p.appendMessage(env.Content)
		return p.buildOutput(), true
	}

	switch ev.Type {
	case EventTurnCompleted:
		if ev.Usage != nil {
			p.usage = &convo.Usage{
				InputTokens:       ev.Usage.InputTokens,
				CachedInputTokens: ev.Usage.CachedInputTokens,
				OutputTokens:      ev.Usage.OutputTokens,
			}
			p.turnAnchor = time.Now()
			return p.buildOutput(), true
		}
		return "", false
	case EventItemCompleted:
		if ev.Item != nil {
			return p.feedItem(ev.Item)
		}
		return "", false
	default:
		slog.Debug("skipping unknown codex event type", "type", ev.Type)
		return "", false
	}
}

func (p *Parser) feedItem(item *Item) (string, bool) {
	switch item.Type {
	case ItemAgentMessage:
		p.messages = append(p.messages, item.Text)
		p.tl.AppendAssistant(item.Text)
	case ItemReasoning:
		p.reasoning = append(p.reasoning, item.Text)
		p.tl.AppendThinking(item.Text)
	case ItemCommandExecution:
		detail := ""
		if item.AggregatedOutput != "" {
			detail = shellTranscript(item.Command, item.AggregatedOutput)
		}
		p.tl.Upsert(timeline.Entry{
			ID:     item.ID,
			Label:  item.Command,
			Detail: detail,
			Status: statusFromWire(item.Status),
		})
		p.tl.AppendTool(item.Command, detail, item.Status == StatusFailed)
	case ItemFileChange:
		detail := changeSummary(item.Changes)
		status := timeline.StatusCompleted
		if item.Status == StatusFailed {
			status = timeline.StatusFailed
		}
		p.tl.Upsert(timeline.Entry{
			ID:     item.ID,
			Label:  "File updates",
			Detail: detail,
			Status: status,
		})
		p.tl.AppendTool("File updates", detail, item.Status == StatusFailed)
	default:
		slog.Debug("skipping unknown codex item type", "type", item.Type)
		return "", false
	}
	return p.buildOutput(), true
}

// appendMessage records unparseable input as plain text.
func (p *Parser) appendMessage(text string) {
	p.messages = append(p.messages, text)
	p.tl.AppendAssistant(text)
}

// buildOutput rebuilds the full formatted text from accumulated state.
// Section order and separators are load-bearing: downstream consumers diff
// this output against what they last rendered.
func (p *Parser) buildOutput() string {
	var blocks []string

	if len(p.reasoning) > 0 {
		wrapped := make([]string, len(p.reasoning))
		for i, r := range p.reasoning {
			wrapped[i] = "_" + r + "_"
		}
		blocks = append(blocks, strings.Join(wrapped, "\n\n"))
	}

	if len(p.messages) > 0 {
		blocks = append(blocks, strings.Join(p.messages, "\n\n"))
	}

	if p.usage != nil {
		blocks = append(blocks, p.usage.Summary())
	}

	if steps := p.tl.Steps(); len(steps) > 0 {
		lines := make([]string, 0, len(steps))
		for _, s := range steps {
			line := s.Status.Marker() + " " + s.Label
			if s.Detail != "" {
				line += "\n" + s.Detail
			}
			lines = append(lines, line)
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}

	return strings.Join(blocks, "\n\n")
}

// Steps returns the current step timeline snapshot.
func (p *Parser) Steps() []timeline.Entry { return p.tl.Steps() }

// Messages projects the timeline event log, in arrival order, to the
// conversation view with the stored usage attached.
func (p *Parser) Messages() []convo.Message {
	return convo.Project(p.tl.Events(), p.usage)
}

// statusFromWire maps a wire status to a step status. Absent or
// unrecognized statuses default to in_progress.
func statusFromWire(s string) timeline.Status {
	switch s {
	case StatusCompleted:
		return timeline.StatusCompleted
	case StatusFailed:
		return timeline.StatusFailed
	default:
		return timeline.StatusInProgress
	}
}

// shellTranscript builds the fenced command transcript shown as step detail.
func shellTranscript(command, output string) string {
	return "```\n$ " + command + "\n" + output + "\n```"
}

// changeSummary renders file_change entries one per line.
func changeSummary(changes []FileChange) string {
	lines := make([]string, 0, len(changes))
	for _, c := range changes {
		lines = append(lines, changeLabel(c.Kind)+": "+c.Path)
	}
	return strings.Join(lines, "\n")
}

func changeLabel(kind string) string {
	switch kind {
	case "add":
		return "Created"
	case "delete":
		return "Deleted"
	default:
		return "Modified"
	}
}
