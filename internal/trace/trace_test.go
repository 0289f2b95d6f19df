package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestStreamTracerTextOutput(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	ctx := WithTracer(context.Background(), tr)

	pass, ctx := Start(ctx, ScopePass, "pass")
	scan, _ := Start(ctx, ScopeAnalyzer, "scan")
	// rule scope is above LevelDetail and must be filtered
	rule, _ := Start(ctx, ScopeRule, "rule:1.3.1a")
	rule.End("")
	scan.WithExtra("findings", "3").End("")
	pass.End("done")

	out := buf.String()
	for _, want := range []string{"→ pass", "→ scan", "← scan {findings=3}", "← pass (done)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "rule:1.3.1a") {
		t.Fatalf("rule span leaked at detail level:\n%s", out)
	}
}

func TestRingTracerWraps(t *testing.T) {
	r := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		r.Emit(&Event{Kind: KindPoint, Scope: ScopeRule, Name: name})
	}
	snap := r.Snapshot()
	if len(snap) != 2 || snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("snapshot = %+v", snap)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatNDJSON); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Fatalf("ndjson dump:\n%s", buf.String())
	}
}

func TestNopSpanIsSafe(t *testing.T) {
	span, ctx := Start(context.Background(), ScopePass, "pass")
	if span.End("") != 0 || CurrentSpan(ctx) != 0 {
		t.Fatal("nop span must be inert")
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error")
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat = %v, %v", f, err)
	}
}

func TestNDJSONCarriesParent(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithTracer(context.Background(), NewStreamTracer(&buf, LevelDebug, FormatNDJSON))
	pass, ctx := Start(ctx, ScopePass, "check")
	rule, _ := Start(ctx, ScopeRule, "rule:2.4.4")
	rule.WithExtra("matches", "2").End("")
	pass.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 events, got %d:\n%s", len(lines), buf.String())
	}
	var ev struct {
		Kind     string            `json:"kind"`
		Scope    string            `json:"scope"`
		SpanID   uint64            `json:"span_id"`
		ParentID uint64            `json:"parent_id"`
		Name     string            `json:"name"`
		Extra    map[string]string `json:"extra"`
	}
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatalf("decode %q: %v", lines[2], err)
	}
	if ev.Kind != "end" || ev.Scope != "rule" || ev.Name != "rule:2.4.4" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.ParentID != pass.ID() || ev.SpanID != rule.ID() {
		t.Fatalf("span ids = %d/%d, want %d/%d", ev.SpanID, ev.ParentID, rule.ID(), pass.ID())
	}
	if ev.Extra["matches"] != "2" {
		t.Fatalf("extra = %v", ev.Extra)
	}
}

func TestNewByMode(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("off level must yield the nop tracer, got %T %v", tr, err)
	}
	tr, err = New(Config{Level: LevelPhase, Mode: ModeRing, RingSize: 8})
	if _, ok := tr.(*RingTracer); err != nil || !ok {
		t.Fatalf("ring mode = %T %v", tr, err)
	}
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	multi, ok := tr.(*MultiTracer)
	if err != nil || !ok || multi.Ring() == nil {
		t.Fatalf("both mode = %T %v", tr, err)
	}
	if _, err := ParseMode("tape"); err == nil {
		t.Fatal("expected mode error")
	}
}

func TestHeartbeat(t *testing.T) {
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("heartbeat on nop tracer")
	}
	r := NewRingTracer(16, LevelPhase)
	h := StartHeartbeat(r, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(r.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	snap := r.Snapshot()
	if len(snap) == 0 || snap[0].Kind != KindHeartbeat {
		t.Fatalf("snapshot = %+v", snap)
	}
}
