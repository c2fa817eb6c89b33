package claude

import "testing"

func TestParseLineDiscrimination(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantType string
		wantErr  bool
	}{
		{
			name:     "assistant",
			line:     `{"type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"hi"}]}}`,
			wantType: "assistant",
		},
		{
			name:     "user tool result",
			line:     `{"type":"user","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"t1","content":"ok"}]}}`,
			wantType: "user",
		},
		{
			name:     "result",
			line:     `{"type":"result","subtype":"success","is_error":false,"duration_ms":12}`,
			wantType: "result",
		},
		{
			name:     "system init",
			line:     `{"type":"system","subtype":"init","session_id":"s1","model":"m"}`,
			wantType: "system",
		},
		{
			name:    "unknown type",
			line:    `{"type":"telemetry"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			line:    `plain words`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseLine([]byte(tt.line))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %T", parsed)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLine: %v", err)
			}
			if got := parsed.lineType(); got != tt.wantType {
				t.Errorf("lineType = %q, want %q", got, tt.wantType)
			}
		})
	}
}

func TestResultText(t *testing.T) {
	tests := []struct {
		content interface{}
		name    string
		want    string
	}{
		{name: "plain string", content: "output", want: "output"},
		{
			name: "block list",
			content: []interface{}{
				map[string]interface{}{"type": "text", "text": "part1\n"},
				map[string]interface{}{"type": "text", "text": "part2"},
			},
			want: "part1\npart2",
		},
		{name: "nil", content: nil, want: ""},
		{name: "unexpected shape", content: 42.0, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResultText(tt.content); got != tt.want {
				t.Errorf("ResultText = %q, want %q", got, tt.want)
			}
		})
	}
}
