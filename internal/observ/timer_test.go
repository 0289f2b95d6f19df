package observ

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestTimerRecordConcurrent(t *testing.T) {
	timer := NewTimer()
	idx := timer.Begin("scan")
	timer.End(idx, "3 findings")

	var wg sync.WaitGroup
	for _, name := range []string{"whatwg", "w3c", "contrast"} {
		name := name
		wg.Add(1)
		go func() {
			defer wg.Done()
			timer.Record(name, time.Millisecond, "")
		}()
	}
	wg.Wait()

	rep := timer.Report()
	if len(rep.Phases) != 4 {
		t.Fatalf("expected 4 phases, got %d", len(rep.Phases))
	}
	notes := map[string]string{}
	for _, p := range rep.Phases {
		notes[p.Name] = p.Note
	}
	if notes["scan"] != "3 findings" {
		t.Fatalf("scan phase missing or wrong: %+v", rep.Phases)
	}
	if rep.TotalMS <= 0 {
		t.Fatalf("total must be positive, got %f", rep.TotalMS)
	}
}

func TestTimerSummary(t *testing.T) {
	timer := NewTimer()
	timer.End(timer.Begin("score"), "")
	out := timer.Summary()
	if !strings.HasPrefix(out, "timings:\n") || !strings.Contains(out, "score") || !strings.Contains(out, "total") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	timer := NewTimer()
	timer.End(5, "ignored")
	if rep := timer.Report(); len(rep.Phases) != 0 {
		t.Fatalf("expected no phases, got %+v", rep.Phases)
	}
}

func TestReportLogsAsObject(t *testing.T) {
	var buf bytes.Buffer
	rep := Report{TotalMS: 12.5, Phases: []PhaseReport{{Name: "scan", DurationMS: 2}, {Name: "contrast", DurationMS: 7.25}}}
	log := zerolog.New(&buf)
	log.Info().Object("timings", rep).Msg("pass finished")

	var line struct {
		Timings map[string]float64 `json:"timings"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	want := map[string]float64{"total_ms": 12.5, "scan": 2, "contrast": 7.25}
	for k, v := range want {
		if line.Timings[k] != v {
			t.Fatalf("timings = %v, want %v", line.Timings, want)
		}
	}
}
