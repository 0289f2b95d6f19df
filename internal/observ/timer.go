// Package observ measures how long the phases of a check take.
package observ

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type phase struct {
	name  string
	start time.Time
	dur   time.Duration
	note  string
}

// Timer collects phases of one pass. Record may be called from several
// goroutines; a Begin/End pair belongs to the goroutine that opened it.
type Timer struct {
	mu     sync.Mutex
	phases []phase
	start  time.Time
}

func NewTimer() *Timer { return &Timer{start: time.Now()} }

// Begin opens a phase and returns the handle End expects.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, phase{name: name, start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase opened by Begin; unknown handles are ignored.
func (t *Timer) End(idx int, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx >= 0 && idx < len(t.phases) {
		p := &t.phases[idx]
		p.dur, p.note = time.Since(p.start), note
	}
}

// Record adds a phase measured elsewhere, typically in a concurrent task.
func (t *Timer) Record(name string, dur time.Duration, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, phase{name: name, start: time.Now().Add(-dur), dur: dur, note: note})
}

func (t *Timer) Summary() string { return FormatReport(t.Report()) }

// Report returns the phases in start order. TotalMS is wall-clock time since
// NewTimer, so overlapping phases are not counted twice.
func (t *Timer) Report() Report {
	t.mu.Lock()
	phases := slices.Clone(t.phases)
	t.mu.Unlock()
	if len(phases) == 0 {
		return Report{}
	}
	slices.SortStableFunc(phases, func(a, b phase) int { return a.start.Compare(b.start) })

	rep := Report{TotalMS: millis(time.Since(t.start)), Phases: make([]PhaseReport, 0, len(phases))}
	for _, p := range phases {
		rep.Phases = append(rep.Phases, PhaseReport{Name: p.name, DurationMS: millis(p.dur), Note: p.note})
	}
	return rep
}

// PhaseReport: одна фаза в сериализуемом виде.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// MarshalZerologObject logs the report as {"total_ms":..., "<phase>":ms}.
func (r Report) MarshalZerologObject(e *zerolog.Event) {
	e.Float64("total_ms", r.TotalMS)
	for _, p := range r.Phases {
		e.Float64(p.Name, p.DurationMS)
	}
}

// FormatReport renders a report as an aligned table.
func FormatReport(r Report) string {
	var b strings.Builder
	b.WriteString("timings:\n")
	row := func(name string, ms float64, note string) {
		fmt.Fprintf(&b, "  %-20s %7.2f ms", name, ms)
		if note != "" {
			b.WriteString("  // " + note)
		}
		b.WriteByte('\n')
	}
	for _, p := range r.Phases {
		row(p.Name, p.DurationMS, p.Note)
	}
	row("total", r.TotalMS, "")
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
