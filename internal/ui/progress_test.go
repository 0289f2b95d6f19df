package ui

import (
	"strings"
	"testing"

	"ably/internal/engine"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan engine.Event)
	m := NewProgressModel("checking", []string{"a.html", "b.html", "c.html"}, events).(*progressModel)

	m.applyEvent(engine.Event{File: "a.html", Stage: engine.StageScan, Status: engine.StatusWorking})
	if m.rows[0].status != "scanning" {
		t.Fatalf("a.html status = %q", m.rows[0].status)
	}
	m.applyEvent(engine.Event{File: "a.html", Stage: engine.StageEmit, Status: engine.StatusDone, Problems: 3})
	m.applyEvent(engine.Event{File: "b.html", Stage: engine.StageLoad, Status: engine.StatusError})
	m.applyEvent(engine.Event{File: "c.html", Stage: engine.StageEmit, Status: engine.StatusDone})
	m.applyEvent(engine.Event{File: "unknown.html", Stage: engine.StageScan, Status: engine.StatusWorking})
	// поздние события завершённого файла игнорируются
	m.applyEvent(engine.Event{File: "a.html", Stage: engine.StageScan, Status: engine.StatusWorking})

	got := []string{m.rows[0].status, m.rows[1].status, m.rows[2].status}
	want := []string{"3 found", "error", "clean"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("statuses = %q, want %q", got, want)
		}
	}
	if m.finished != 3 || m.problems != 3 {
		t.Fatalf("finished=%d problems=%d", m.finished, m.problems)
	}

	view := m.View()
	if !strings.Contains(view, "a.html") || !strings.Contains(view, "checking 3/3") {
		t.Fatalf("view misses file or title:\n%s", view)
	}
}

func TestProgressModelQuitsWhenClosed(t *testing.T) {
	events := make(chan engine.Event)
	close(events)
	m := NewProgressModel("checking", []string{"a.html"}, events).(*progressModel)
	msg := m.next()()
	if _, ok := msg.(closedMsg); !ok {
		t.Fatalf("expected closedMsg, got %T", msg)
	}
	m.Update(msg)
	if !m.done || !strings.Contains(m.View(), "done: checking, 0 problems") {
		t.Fatalf("model not finished:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short.html", 20, "short.html"},
		{"very/long/path/index.html", 10, "very/lo..."},
		{"abcdef", 2, "ab"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
