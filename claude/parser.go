// Package claude parses the Claude CLI stream-json output into renderable
// conversation state.
//
// Unlike the codex package this is a delta parser: Feed returns only the
// newly produced text and callers append it to prior content. The wire
// format is NDJSON (one JSON object per line, discriminated by a type
// field) with tool invocations split across an assistant tool_use block
// and a later user tool_result block.
package claude

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/agentdeck/agentdeck/convo"
	"github.com/agentdeck/agentdeck/timeline"
)

// AnnouncementPrefix marks a control line that toggles only the
// streaming/running flag of the session without altering content. The
// dispatcher routes announcement chunks without creating a parser.
const AnnouncementPrefix = "[[agent-announcement]]"

const labelLimit = 80

// Parser accumulates conversation state for one Claude session.
//
// Not safe for concurrent use; the dispatcher serializes chunks per session.
type Parser struct {
	usage     *convo.Usage
	tl        *timeline.Timeline
	toolNames map[string]string // tool_use id → label, for result matching
	emitted   bool
	running   bool
}

// New returns an empty Claude parser.
func New() *Parser {
	return &Parser{tl: timeline.New(), toolNames: make(map[string]string), running: true}
}

// Mode reports delta output semantics.
func (p *Parser) Mode() convo.OutputMode { return convo.ModeDelta }

// Kind reports the Claude wire format.
func (p *Parser) Kind() convo.AgentKind { return convo.KindClaude }

// Running reports the streaming/running flag, toggled by announcement lines
// and cleared by the terminal result line.
func (p *Parser) Running() bool { return p.running }

// Feed consumes one raw chunk, which may hold several NDJSON lines. The
// returned string is the newly produced text only; ok is false when no
// renderable text was produced (tool results, announcements, and result
// lines update side-channel state instead). Feed never fails: lines that
// are not JSON degrade to plain text.
func (p *Parser) Feed(raw string) (string, bool) {
	var deltas []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, AnnouncementPrefix) {
			p.running = !p.running
			continue
		}
		if d := p.feedLine(trimmed); d != "" {
			deltas = append(deltas, d)
		}
	}
	if len(deltas) == 0 {
		return "", false
	}

	out := strings.Join(deltas, "\n\n")
	if p.emitted {
		out = "\n\n" + out
	}
	p.emitted = true
	return out, true
}

func (p *Parser) feedLine(line string) string {
	parsed, err := ParseLine([]byte(line))
	if err != nil {
		if errors.Is(err, ErrUnknownLineType) {
			slog.Debug("skipping unknown claude line type", "error", err)
			return ""
		}
		// Not JSON at all: degrade to plain text.
		p.tl.AppendAssistant(line)
		return line
	}

	switch l := parsed.(type) {
	case *AssistantLine:
		return p.feedAssistant(l)
	case *UserLine:
		p.feedToolResults(l)
		return ""
	case *ResultLine:
		p.feedResult(l)
		return ""
	case *SystemLine:
		slog.Debug("claude system line", "subtype", l.Subtype, "session_id", l.SessionID)
		return ""
	default:
		return ""
	}
}

func (p *Parser) feedAssistant(l *AssistantLine) string {
	var parts []string
	for _, block := range l.Message.Content {
		switch block.Type {
		case "text":
			if block.Text == "" {
				continue
			}
			p.tl.AppendAssistant(block.Text)
			parts = append(parts, block.Text)
		case "thinking":
			if block.Thinking == "" {
				continue
			}
			p.tl.AppendThinking(block.Thinking)
			parts = append(parts, "_"+block.Thinking+"_")
		case "tool_use":
			label := toolLabel(block.Name, block.Input)
			p.toolNames[block.ID] = label
			p.tl.Upsert(timeline.Entry{
				ID:     block.ID,
				Label:  label,
				Status: timeline.StatusInProgress,
			})
		default:
			slog.Debug("skipping unknown claude content block", "type", block.Type)
		}
	}
	return strings.Join(parts, "\n\n")
}

func (p *Parser) feedToolResults(l *UserLine) {
	for _, block := range l.Message.Content {
		if block.Type != "tool_result" {
			continue
		}
		label, known := p.toolNames[block.ToolUseID]
		if !known {
			// Result for a tool_use this session never announced; keep
			// it anyway under its id so nothing vanishes.
			label = block.ToolUseID
		}
		status := timeline.StatusCompleted
		if block.IsError {
			status = timeline.StatusFailed
		}
		detail := ResultText(block.Content)
		p.tl.Upsert(timeline.Entry{
			ID:     block.ToolUseID,
			Label:  label,
			Detail: detail,
			Status: status,
		})
		p.tl.AppendTool(label, detail, block.IsError)
	}
}

func (p *Parser) feedResult(l *ResultLine) {
	p.running = false
	if l.Usage != nil {
		p.usage = &convo.Usage{
			InputTokens:       l.Usage.InputTokens,
			CachedInputTokens: l.Usage.CacheReadInputTokens,
			OutputTokens:      l.Usage.OutputTokens,
		}
	}
}

// Steps returns the current step timeline snapshot.
func (p *Parser) Steps() []timeline.Entry { return p.tl.Steps() }

// Messages projects the timeline event log, in arrival order, to the
// conversation view with the stored usage attached.
func (p *Parser) Messages() []convo.Message {
	return convo.Project(p.tl.Events(), p.usage)
}

// toolLabel builds the step display line from the tool name and its most
// descriptive input field.
func toolLabel(name string, input map[string]interface{}) string {
	primary := ""
	for _, key := range []string{"command", "file_path", "path", "pattern", "url"} {
		if v, ok := input[key].(string); ok && strings.TrimSpace(v) != "" {
			primary = strings.TrimSpace(v)
			break
		}
	}
	if primary == "" {
		return name
	}
	label := name + ": " + primary
	if len(label) > labelLimit {
		label = label[:labelLimit-3] + "..."
	}
	return label
}
