package testkit

import (
	"strings"
	"testing"

	"ably/internal/diag"
	"ably/internal/source"
)

func TestCheckDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("page.html", []byte("<html><body></body></html>\n"))
	sf := fs.Get(id)
	at := func(start, end uint32) source.Span {
		return source.Span{File: id, Start: start, End: end}
	}
	d := func(sp source.Span, msg string) diag.Diagnostic {
		return diag.Diagnostic{Severity: diag.SevWarning, Code: diag.ConContrast, Source: "WCAG 2.2 | 1.4.3", Message: msg, Primary: sp}
	}

	tests := []struct {
		name    string
		items   []diag.Diagnostic
		max     int
		wantErr string
	}{
		{name: "empty", items: nil},
		{name: "ordered", items: []diag.Diagnostic{d(at(0, 6), "a"), d(at(0, 12), "b"), d(at(6, 12), "c")}, max: 3},
		{name: "budget", items: []diag.Diagnostic{d(at(0, 6), "a"), d(at(6, 12), "b")}, max: 1, wantErr: "exceed budget"},
		{name: "out of bounds", items: []diag.Diagnostic{d(at(0, 400), "a")}, wantErr: "beyond content"},
		{name: "inverted", items: []diag.Diagnostic{d(at(6, 2), "a")}, wantErr: "inverted"},
		{name: "foreign file", items: []diag.Diagnostic{d(source.Span{File: id + 1, Start: 0, End: 1}, "a")}, wantErr: "file mismatch"},
		{name: "unordered", items: []diag.Diagnostic{d(at(6, 12), "a"), d(at(0, 6), "b")}, wantErr: "ordered after"},
		{name: "duplicate", items: []diag.Diagnostic{d(at(0, 6), "a"), d(at(0, 6), "a")}, wantErr: "duplicates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckDiagnostics(sf, tt.items, tt.max)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
