package trace

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Format is the encoding of written events.
type Format uint8

const (
	FormatAuto Format = iota
	FormatText
	FormatNDJSON
)

// ParseFormat converts a flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// FormatEvent encodes ev as one line. start anchors the relative timestamp of
// text output.
func FormatEvent(ev *Event, format Format, start time.Time) []byte {
	if format == FormatNDJSON {
		return encodeJSON(ev)
	}
	return encodeText(ev, start)
}

func encodeJSON(ev *Event) []byte {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	e := l.Log().
		Str("time", ev.Time.Format(time.RFC3339Nano)).
		Uint64("seq", ev.Seq).
		Str("kind", ev.Kind.String()).
		Str("scope", ev.Scope.String()).
		Uint64("span_id", ev.SpanID)
	if ev.ParentID != 0 {
		e = e.Uint64("parent_id", ev.ParentID)
	}
	e = e.Str("name", ev.Name)
	if ev.Detail != "" {
		e = e.Str("detail", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		extra := zerolog.Dict()
		for _, k := range sortedKeys(ev.Extra) {
			extra = extra.Str(k, ev.Extra[k])
		}
		e = e.Dict("extra", extra)
	}
	e.Send()
	return buf.Bytes()
}

var kindMarks = map[Kind]string{
	KindSpanBegin: "→",
	KindSpanEnd:   "←",
	KindPoint:     "•",
	KindHeartbeat: "♡",
}

// encodeText: [elapsed] indent mark name (detail) {k=v, ...}
func encodeText(ev *Event, start time.Time) []byte {
	var elapsed time.Duration
	if !start.IsZero() {
		elapsed = ev.Time.Sub(start)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%9.3fms] %s%s %s",
		float64(elapsed.Microseconds())/1000,
		strings.Repeat("  ", max(int(ev.Scope)-1, 0)),
		kindMarks[ev.Kind],
		ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		pairs := make([]string, 0, len(ev.Extra))
		for _, k := range sortedKeys(ev.Extra) {
			pairs = append(pairs, k+"="+ev.Extra[k])
		}
		fmt.Fprintf(&sb, " {%s}", strings.Join(pairs, ", "))
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
