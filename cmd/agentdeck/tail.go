package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/agentdeck/agentdeck/convo"
	"github.com/agentdeck/agentdeck/dispatch"
	"github.com/agentdeck/agentdeck/internal/linebuf"
)

var (
	tailSession   string
	tailAgent     string
	tailFromStart bool
)

var tailCmd = &cobra.Command{
	Use:   "tail <file>",
	Short: "Follow an agent output file and render it live",
	Long: `Tail watches a file the agent CLI is writing to and renders new
output as it arrives. Junk lines (node warnings, ANSI control
sequences, SSE framing) are filtered before parsing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		kind := convo.KindPlainText
		if tailAgent != "" {
			k, ok := parseKind(tailAgent)
			if !ok {
				return fmt.Errorf("unknown agent %q", tailAgent)
			}
			kind = k
		}

		_, d := newEngine(cfg, newLiveSink(cmd.OutOrStdout()))
		if tailAgent != "" {
			d.SetKind(tailSession, kind)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return tailFile(ctx, args[0], kind, d)
	},
}

func init() {
	tailCmd.Flags().StringVar(&tailSession, "session", "tail", "Session id for the followed stream")
	tailCmd.Flags().StringVar(&tailAgent, "agent", "", "Pin the parser variant (codex, claude, plaintext)")
	tailCmd.Flags().BoolVar(&tailFromStart, "from-start", false, "Parse existing file content before following")
	rootCmd.AddCommand(tailCmd)
}

// tailFile follows path until ctx is cancelled, feeding framed payloads to
// the dispatcher.
func tailFile(ctx context.Context, path string, kind convo.AgentKind, d *dispatch.Dispatcher) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if !tailFromStart {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			return fmt.Errorf("seek %s: %w", path, err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	var acc linebuf.Accumulator
	feed := func() error {
		data, err := io.ReadAll(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		for _, payload := range acc.PushChunk(string(data)) {
			line, keep := linebuf.Sanitize(kind, payload)
			if !keep {
				continue
			}
			d.Handle(dispatch.StreamChunk{SessionID: tailSession, Content: line})
		}
		return nil
	}

	if tailFromStart {
		if err := feed(); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			d.Cancel(tailSession)
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) {
				if err := feed(); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
}

// liveSink prints content updates as they arrive. Full-mode updates are
// diffed against what was last printed so an extended transcript emits
// only its new tail.
type liveSink struct {
	out  io.Writer
	last map[string]string
}

func newLiveSink(out io.Writer) *liveSink {
	return &liveSink{out: out, last: make(map[string]string)}
}

func (s *liveSink) Apply(u dispatch.MessageUpdate) {
	if !u.HasContent {
		return
	}
	switch u.Mode {
	case convo.ModeDelta:
		fmt.Fprint(s.out, u.Content)
	default:
		prev := s.last[u.SessionID]
		if strings.HasPrefix(u.Content, prev) {
			fmt.Fprint(s.out, strings.TrimPrefix(u.Content, prev))
		} else {
			fmt.Fprint(s.out, "\n"+u.Content)
		}
		s.last[u.SessionID] = u.Content
	}
}
