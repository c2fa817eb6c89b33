package timeline

import "testing"

func TestUpsertMutatesInPlace(t *testing.T) {
	tl := New()
	tl.Upsert(Entry{ID: "c1", Label: "ls", Status: StatusInProgress})
	tl.Upsert(Entry{ID: "c2", Label: "cat a.txt", Status: StatusInProgress})
	tl.Upsert(Entry{ID: "c1", Label: "ls", Detail: "a.txt", Status: StatusCompleted})

	steps := tl.Steps()
	if len(steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(steps))
	}
	if steps[0].ID != "c1" || steps[0].Status != StatusCompleted {
		t.Errorf("first step = %+v, want c1 completed", steps[0])
	}
	if steps[0].Detail != "a.txt" {
		t.Errorf("detail = %q, want %q", steps[0].Detail, "a.txt")
	}
	if steps[1].ID != "c2" {
		t.Errorf("second step = %+v, want c2", steps[1])
	}
}

func TestUpsertPreservesArrivalOrder(t *testing.T) {
	tl := New()
	for _, id := range []string{"a", "b", "c"} {
		tl.Upsert(Entry{ID: id, Status: StatusInProgress})
	}
	tl.Upsert(Entry{ID: "a", Status: StatusFailed})

	steps := tl.Steps()
	if steps[0].ID != "a" || steps[1].ID != "b" || steps[2].ID != "c" {
		t.Errorf("order changed after upsert: %+v", steps)
	}
}

func TestStep(t *testing.T) {
	tl := New()
	tl.Upsert(Entry{ID: "x", Label: "echo hi"})

	got, ok := tl.Step("x")
	if !ok || got.Label != "echo hi" {
		t.Errorf("Step(x) = %+v, %v", got, ok)
	}
	if _, ok := tl.Step("missing"); ok {
		t.Error("Step(missing) reported present")
	}
}

func TestEventsArrivalOrder(t *testing.T) {
	tl := New()
	tl.AppendThinking("hmm")
	tl.AppendAssistant("hello")
	tl.AppendTool("ls", "a.txt", false)

	events := tl.Events()
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	if events[0].Kind != KindThinking || events[1].Kind != KindAssistant || events[2].Kind != KindTool {
		t.Errorf("event order wrong: %+v", events)
	}
}

func TestStepsReturnsCopy(t *testing.T) {
	tl := New()
	tl.Upsert(Entry{ID: "a", Label: "one"})

	steps := tl.Steps()
	steps[0].Label = "mutated"

	if got, _ := tl.Step("a"); got.Label != "one" {
		t.Errorf("internal state mutated through Steps copy: %q", got.Label)
	}
}

func TestStatusMarker(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusPending, "…"},
		{StatusInProgress, "…"},
		{StatusCompleted, "✓"},
		{StatusFailed, "✖"},
	}
	for _, tt := range tests {
		if got := tt.status.Marker(); got != tt.want {
			t.Errorf("Marker(%v) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusPending, "pending"},
		{StatusInProgress, "in_progress"},
		{StatusCompleted, "completed"},
		{StatusFailed, "failed"},
		{Status(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}
