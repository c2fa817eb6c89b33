package convo

import "github.com/agentdeck/agentdeck/timeline"

// Project maps an arrival-order timeline event log to the conversation
// view. When usage is non-nil it attaches to the most recent non-thinking
// assistant message, scanning backward, so cost is reported on the final
// reply rather than on reasoning.
func Project(events []timeline.Event, usage *Usage) []Message {
	out := make([]Message, 0, len(events))
	for _, ev := range events {
		switch ev.Kind {
		case timeline.KindThinking:
			out = append(out, Message{Role: RoleAssistant, Content: ev.Text, IsThinking: true})
		case timeline.KindAssistant:
			out = append(out, Message{Role: RoleAssistant, Content: ev.Text})
		case timeline.KindTool:
			out = append(out, Message{
				Role:       RoleTool,
				ToolName:   ev.ToolName,
				ToolResult: ev.Detail,
				IsError:    ev.IsError,
			})
		}
	}

	if usage != nil {
		for i := len(out) - 1; i >= 0; i-- {
			if out[i].Role == RoleAssistant && !out[i].IsThinking {
				u := *usage
				out[i].Usage = &u
				break
			}
		}
	}
	return out
}
