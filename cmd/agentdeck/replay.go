package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/agentdeck/agentdeck/dispatch"
	"github.com/agentdeck/agentdeck/history"
	"github.com/agentdeck/agentdeck/internal/linebuf"
	"github.com/agentdeck/agentdeck/render"
)

var replayExport bool

var replayCmd = &cobra.Command{
	Use:   "replay <chunk-log>",
	Short: "Replay a recorded chunk log into a transcript",
	Long: `Replay reads a recorded stream of chunk frames (one JSON object per
line, as captured from the event channel) and prints the resulting
conversation transcripts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open chunk log: %w", err)
		}
		defer f.Close()

		store, d := newEngine(cfg)
		if err := feedChunkLog(f, d); err != nil {
			return err
		}
		return printTranscripts(cmd.OutOrStdout(), store)
	},
}

func init() {
	replayCmd.Flags().BoolVar(&replayExport, "export", false, "Print markdown instead of the colored transcript")
	rootCmd.AddCommand(replayCmd)
}

// feedChunkLog streams the recorded frames through the dispatcher. Frames
// that do not decode are skipped so a truncated recording still replays.
func feedChunkLog(r io.Reader, d *dispatch.Dispatcher) error {
	var acc linebuf.Accumulator
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		for _, payload := range acc.PushChunk(string(buf[:n])) {
			handlePayload(d, payload)
		}
		if err == io.EOF {
			if payload, ok := acc.Flush(); ok {
				handlePayload(d, payload)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("read chunk log: %w", err)
		}
	}
}

func handlePayload(d *dispatch.Dispatcher, payload string) {
	var chunk dispatch.StreamChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil || chunk.SessionID == "" {
		slog.Warn("skipping undecodable chunk frame", "payload", payload)
		return
	}
	d.Handle(chunk)
}

func printTranscripts(out io.Writer, store *history.Store) error {
	ids := store.SessionIDs()
	sort.Strings(ids)

	r := render.NewRenderer(out, noColor)
	for _, id := range ids {
		conv, err := store.Snapshot(id)
		if err != nil {
			return err
		}
		if replayExport {
			md, err := store.Export(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, md)
			continue
		}
		r.Conversation(conv)
	}
	return nil
}
