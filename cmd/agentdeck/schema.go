package main

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/agentdeck/agentdeck/claude"
	"github.com/agentdeck/agentdeck/codex"
	"github.com/agentdeck/agentdeck/dispatch"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <chunk|codex|claude>",
	Short: "Print the JSON schema of a wire type",
	Long: `Schema prints the JSON schema for the frames agentdeck consumes:
the chunk envelope of the event channel, the Codex event format, or
the Claude NDJSON line format.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"chunk", "codex", "claude"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var target any
		switch args[0] {
		case "chunk":
			target = dispatch.StreamChunk{}
		case "codex":
			target = codex.Event{}
		case "claude":
			target = claude.RawLine{}
		default:
			return fmt.Errorf("unknown wire type %q", args[0])
		}

		reflector := &jsonschema.Reflector{
			DoNotReference: true, // Inline all definitions instead of using $ref
			ExpandedStruct: true,
		}
		data, err := json.MarshalIndent(reflector.Reflect(target), "", "  ")
		if err != nil {
			return fmt.Errorf("encode schema: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
