package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ably/internal/config"
	"ably/internal/diagfmt"
	"ably/internal/engine"
	"ably/internal/scan"
	"ably/internal/wcag"
)

const lowContrastPage = `<html>
<body>
<p style="color: #ff0000;">Warning</p>
</body>
</html>
`

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	scanner, err := scan.New(scan.Options{Rules: []scan.Rule{}})
	if err != nil {
		t.Fatalf("scan.New: %v", err)
	}
	e, err := engine.New(engine.Options{Scanner: scanner})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return e
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in   string
		want uiMode
		ok   bool
	}{
		{"", uiModeAuto, true},
		{"AUTO", uiModeAuto, true},
		{"on", uiModeOn, true},
		{" off ", uiModeOff, true},
		{"sometimes", "", false},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Fatalf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(errFindings); got != exitFindings {
		t.Fatalf("findings exit = %d", got)
	}
	if got := exitCode(errors.New("boom")); got != exitFailure {
		t.Fatalf("failure exit = %d", got)
	}
}

func TestEffectiveMaxProblems(t *testing.T) {
	cfg := config.Default()
	cfg.Check.MaxProblems = 50
	if got := effectiveMaxProblems(0, cfg); got != 50 {
		t.Fatalf("expected settings value, got %d", got)
	}
	if got := effectiveMaxProblems(3, cfg); got != 3 {
		t.Fatalf("expected flag value, got %d", got)
	}
}

func TestCheckDirectoryAndReport(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"index.html":       lowContrastPage,
		"about/about.html": "<html><body><p>Fine</p></body></html>\n",
		"notes.txt":        lowContrastPage,
	} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	opts := checkOptions{format: "json", pathMode: diagfmt.PathModeBasename, ui: uiModeOff, withNotes: true, jobs: 2}
	fs, results, err := collectResults(context.Background(), newTestEngine(t), dir, opts)
	if err != nil {
		t.Fatalf("collectResults: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 html documents, got %d", len(results))
	}
	failed, problems := summarize(results)
	if failed != 0 || problems != 1 {
		t.Fatalf("summarize = %d failed, %d problems", failed, problems)
	}

	var out bytes.Buffer
	if err := writeReport(&out, results, fs, opts); err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	var decoded diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out.String())
	}
	if decoded.Count != 1 || len(decoded.Files) != 2 {
		t.Fatalf("unexpected report: count=%d files=%d", decoded.Count, len(decoded.Files))
	}
}

func TestCheckStdin(t *testing.T) {
	fs, results, err := checkStdin(context.Background(), newTestEngine(t), strings.NewReader(lowContrastPage))
	if err != nil {
		t.Fatalf("checkStdin: %v", err)
	}
	if len(results) != 1 || results[0].Path != "<stdin>" || results[0].Result == nil {
		t.Fatalf("unexpected results %+v", results)
	}
	var out bytes.Buffer
	if err := writeReport(&out, results, fs, checkOptions{format: "short"}); err != nil {
		t.Fatalf("writeReport: %v", err)
	}
	if !strings.Contains(out.String(), "<stdin>:3:") {
		t.Fatalf("short output should point at line 3:\n%s", out.String())
	}
}

func TestSummarizeCountsFailures(t *testing.T) {
	results := []engine.FileResult{
		{Path: "a.html", Err: errors.New("missing")},
		{Path: "b.html"},
	}
	failed, problems := summarize(results)
	if failed != 2 || problems != 0 {
		t.Fatalf("summarize = %d, %d", failed, problems)
	}
}

func TestCollectRules(t *testing.T) {
	scanRows := collectRules("scan")
	if len(scanRows) != len(scan.DefaultRules()) {
		t.Fatalf("expected %d scan rules, got %d", len(scan.DefaultRules()), len(scanRows))
	}
	all := collectRules("all")
	want := len(scanRows) + len(wcag.WHATWGRules()) + len(wcag.W3CRules())
	if len(all) != want {
		t.Fatalf("expected %d rules, got %d", want, len(all))
	}
	if len(collectRules("nothing")) != 0 {
		t.Fatalf("unknown table must select nothing")
	}
}

func TestRenderRules(t *testing.T) {
	rows := collectRules("whatwg")
	var out bytes.Buffer
	if err := renderRules(&out, rows, "json"); err != nil {
		t.Fatalf("renderRules json: %v", err)
	}
	var decoded []ruleRow
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(rows) || decoded[0].Table != "whatwg" {
		t.Fatalf("unexpected rows %+v", decoded[:1])
	}

	out.Reset()
	if err := renderRules(&out, rows, "pretty"); err != nil {
		t.Fatalf("renderRules pretty: %v", err)
	}
	if !strings.Contains(out.String(), rows[0].ID) || !strings.Contains(out.String(), "CITATION") {
		t.Fatalf("table misses content:\n%s", out.String())
	}
	if err := renderRules(&out, rows, "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestTruncateMessage(t *testing.T) {
	if got := truncateMessage("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := truncateMessage("abcdefghijkl", 8); got != "abcde..." {
		t.Fatalf("got %q", got)
	}
}

func TestRenderVersionJSON(t *testing.T) {
	var out bytes.Buffer
	info := versionInfo{Version: "1.2.3"}
	if err := renderVersionJSON(&out, info, versionOptions{showHash: true}); err != nil {
		t.Fatalf("renderVersionJSON: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "ably" || payload.Version != "1.2.3" || payload.GitCommit != "unknown" || payload.BuildDate != "" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}
