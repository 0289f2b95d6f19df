package trace

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the type of an event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point", KindHeartbeat: "heartbeat"}

func (k Kind) String() string { return lookupName(kindNames[:], int(k)) }

// Scope is the granularity of an event; lower is coarser.
type Scope uint8

const (
	ScopeDriver   Scope = iota + 1 // CLI command or language server request
	ScopePass                      // one document check
	ScopeAnalyzer                  // scanner, validators, contrast
	ScopeRule                      // single pattern rule or lookup
)

var scopeNames = [...]string{ScopeDriver: "driver", ScopePass: "pass", ScopeAnalyzer: "analyzer", ScopeRule: "rule"}

func (s Scope) String() string { return lookupName(scopeNames[:], int(s)) }

// Level is the tracing verbosity. Each level admits every scope up to and
// including maxScope.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // ring only, dumped when a run fails
	LevelPhase        // driver and pass boundaries
	LevelDetail       // analyzers
	LevelDebug        // single rules
)

var levelNames = [...]string{LevelOff: "off", LevelError: "error", LevelPhase: "phase", LevelDetail: "detail", LevelDebug: "debug"}

var levelMaxScope = [...]Scope{LevelError: ScopePass, LevelPhase: ScopePass, LevelDetail: ScopeAnalyzer, LevelDebug: ScopeRule}

func (l Level) String() string { return lookupName(levelNames[:], int(l)) }

// ShouldEmit reports whether events of scope are recorded at level l.
func (l Level) ShouldEmit(scope Scope) bool {
	if l == LevelOff || int(l) >= len(levelMaxScope) {
		return false
	}
	return scope <= levelMaxScope[l]
}

// ParseLevel accepts the names printed by Level.String, case-insensitively.
func ParseLevel(s string) (Level, error) {
	if i, ok := parseName(levelNames[:], s); ok {
		return Level(i), nil
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // присваивается приёмником, монотонный
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Name     string // e.g. "check", "scan", "rule:1.3.1a"
	Detail   string
	Extra    map[string]string
}

func lookupName(names []string, i int) string {
	if i < 0 || i >= len(names) || names[i] == "" {
		return "unknown"
	}
	return names[i]
}

func parseName(names []string, s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n != "" && n == s {
			return i, true
		}
	}
	return 0, false
}
