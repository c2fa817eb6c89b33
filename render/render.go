// Package render provides ANSI-colored terminal rendering for parsed
// conversations.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/agentdeck/agentdeck/convo"
	"github.com/agentdeck/agentdeck/history"
	"github.com/agentdeck/agentdeck/timeline"
)

// ANSI color codes - chosen to work on both light and dark backgrounds
const (
	ColorReset  = "\x1b[0m"
	ColorDim    = "\x1b[2m"
	ColorItalic = "\x1b[3m"
	ColorBold   = "\x1b[1m"
	ColorRed    = "\x1b[31m"
	ColorGreen  = "\x1b[32m"
	ColorYellow = "\x1b[33m"
	ColorCyan   = "\x1b[36m"
	ColorGray   = "\x1b[90m"
)

// Renderer writes conversation state to a terminal with ANSI colors.
type Renderer struct {
	out     io.Writer
	mu      sync.Mutex
	noColor bool
}

// NewRenderer creates a renderer writing to out. If noColor is true, ANSI
// color codes are suppressed; colors are also suppressed automatically when
// out is not a terminal.
func NewRenderer(out io.Writer, noColor bool) *Renderer {
	if !noColor {
		noColor = !isTerminal(out)
	}
	return &Renderer{out: out, noColor: noColor}
}

// isTerminal checks if the writer is a terminal.
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

// color returns the color code if colors are enabled, empty string otherwise.
func (r *Renderer) color(c string) string {
	if r.noColor {
		return ""
	}
	return c
}

// SessionHeader prints session metadata above the transcript.
func (r *Renderer) SessionHeader(sessionID string, kind convo.AgentKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "%s[session=%s agent=%s]%s\n",
		r.color(ColorGray), sessionID, kind.String(), r.color(ColorReset))
}

// Conversation prints a stored transcript, one record at a time.
func (r *Renderer) Conversation(conv history.Conversation) {
	for _, rec := range conv.Records {
		r.Record(rec)
	}
}

// Record prints one stored message with its role header and steps.
func (r *Renderer) Record(rec history.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "%s%s%s\n", r.color(ColorBold), rec.Role, r.color(ColorReset))
	if rec.Content != "" {
		r.writeBody(rec.Content)
	}
	r.writeSteps(rec.Steps)
	fmt.Fprintln(r.out)
}

// Message prints one projected conversation message. Thinking content is
// rendered dim italic.
func (r *Renderer) Message(m convo.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "%s%s%s\n", r.color(ColorBold), m.Role, r.color(ColorReset))
	switch {
	case m.IsThinking:
		fmt.Fprintf(r.out, "%s%s%s%s\n",
			r.color(ColorDim), r.color(ColorItalic), m.Content, r.color(ColorReset))
	case m.Role == convo.RoleTool:
		marker, markerCol := "✓", ColorGreen
		if m.IsError {
			marker, markerCol = "✖", ColorRed
		}
		fmt.Fprintf(r.out, "%s%s%s %s\n",
			r.color(markerCol), marker, r.color(ColorReset), truncate(m.ToolName, 60))
		if m.ToolResult != "" {
			fmt.Fprintf(r.out, "%s%s%s\n", r.color(ColorGray), m.ToolResult, r.color(ColorReset))
		}
	case m.Content != "":
		fmt.Fprintln(r.out, m.Content)
	}
	if m.Usage != nil {
		fmt.Fprintf(r.out, "%s%s%s\n", r.color(ColorGray), m.Usage.Summary(), r.color(ColorReset))
	}
	fmt.Fprintln(r.out)
}

// Steps prints a step timeline snapshot.
func (r *Renderer) Steps(steps []timeline.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writeSteps(steps)
}

// Error prints an error message.
func (r *Renderer) Error(err error, context string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "%s[Error: %s]%s %v\n", r.color(ColorRed), context, r.color(ColorReset), err)
}

// writeBody prints transcript text, dimming the _underscore_ thinking
// blocks the full-mode parser emits.
func (r *Renderer) writeBody(body string) {
	for _, line := range strings.Split(body, "\n") {
		if isThinkingLine(line) {
			fmt.Fprintf(r.out, "%s%s%s%s\n",
				r.color(ColorDim), r.color(ColorItalic), line, r.color(ColorReset))
			continue
		}
		fmt.Fprintln(r.out, line)
	}
}

func (r *Renderer) writeSteps(steps []timeline.Entry) {
	for _, s := range steps {
		fmt.Fprintf(r.out, "%s%s%s %s\n",
			r.color(markerColor(s.Status)), s.Status.Marker(), r.color(ColorReset),
			truncate(s.Label, 60))
		if s.Detail != "" {
			fmt.Fprintf(r.out, "%s%s%s\n", r.color(ColorGray), s.Detail, r.color(ColorReset))
		}
	}
}

func markerColor(s timeline.Status) string {
	switch s {
	case timeline.StatusCompleted:
		return ColorGreen
	case timeline.StatusFailed:
		return ColorRed
	default:
		return ColorYellow
	}
}

func isThinkingLine(line string) bool {
	return len(line) > 2 && strings.HasPrefix(line, "_") && strings.HasSuffix(line, "_")
}

// truncate truncates a string to the given max length.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
