package linebuf

import (
	"reflect"
	"testing"
)

func TestPushChunkSplitsSeparators(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []string
	}{
		{
			name:   "newline terminated",
			chunks: []string{"one\ntwo\n"},
			want:   []string{"one", "two"},
		},
		{
			name:   "carriage returns",
			chunks: []string{"progress 10%\rprogress 50%\rdone\r"},
			want:   []string{"progress 10%", "progress 50%", "done"},
		},
		{
			name:   "crlf collapses to one boundary",
			chunks: []string{"a\r\nb\r\n"},
			want:   []string{"a", "b"},
		},
		{
			name:   "partial fragment spans chunks",
			chunks: []string{"hel", "lo\nwor", "ld\n"},
			want:   []string{"hello", "world"},
		},
		{
			name:   "sse data prefix stripped",
			chunks: []string{"data: {\"x\":1}\n"},
			want:   []string{`{"x":1}`},
		},
		{
			name:   "sse control lines dropped",
			chunks: []string{"event: message\nid: 7\ndata: [DONE]\ndata: payload\n"},
			want:   []string{"payload"},
		},
		{
			name:   "blank lines dropped",
			chunks: []string{"\n\n  \nx\n"},
			want:   []string{"x"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var acc Accumulator
			var got []string
			for _, c := range tt.chunks {
				got = append(got, acc.PushChunk(c)...)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("payloads = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPushChunkBuffersTrailingFragment(t *testing.T) {
	var acc Accumulator
	if got := acc.PushChunk("no newline yet"); got != nil {
		t.Fatalf("expected no payloads, got %q", got)
	}
	got := acc.PushChunk(" and now\n")
	if len(got) != 1 || got[0] != "no newline yet and now" {
		t.Fatalf("payloads = %q", got)
	}
}

func TestFlushReturnsFinalPayload(t *testing.T) {
	var acc Accumulator
	acc.PushChunk("trailing")
	got, ok := acc.Flush()
	if !ok || got != "trailing" {
		t.Fatalf("Flush() = %q, %v", got, ok)
	}
	if _, ok := acc.Flush(); ok {
		t.Fatal("second Flush must report empty")
	}
}

func TestFlushDropsJunkRemainder(t *testing.T) {
	var acc Accumulator
	acc.PushChunk("data: [DONE]")
	if got, ok := acc.Flush(); ok {
		t.Fatalf("expected no payload, got %q", got)
	}
}
