// Package scan runs the structural pattern rules over raw document text.
package scan

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/rs/zerolog"

	"ably/internal/diag"
	"ably/internal/pass"
	"ably/internal/source"
	"ably/internal/trace"
)

// DefaultMatchTimeout bounds a single match attempt of one rule.
const DefaultMatchTimeout = 2 * time.Second

// Options configures a Scanner.
type Options struct {
	Rules        []Rule // nil selects DefaultRules
	MatchTimeout time.Duration
	Logger       *zerolog.Logger
}

type compiledRule struct {
	Rule
	re *regexp2.Regexp
}

// Scanner applies a rule table to documents. It is safe for concurrent use.
type Scanner struct {
	rules []compiledRule
	log   zerolog.Logger
}

// New compiles the rule table.
func New(opts Options) (*Scanner, error) {
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	timeout := opts.MatchTimeout
	if timeout <= 0 {
		timeout = DefaultMatchTimeout
	}
	s := &Scanner{log: zerolog.Nop()}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	for _, r := range rules {
		re, err := r.compile()
		if err != nil {
			return nil, err
		}
		re.MatchTimeout = timeout
		s.rules = append(s.rules, compiledRule{Rule: r, re: re})
	}
	return s, nil
}

// Rules returns the rule table in application order.
func (s *Scanner) Rules() []Rule {
	out := make([]Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r.Rule)
	}
	return out
}

// Scan applies every rule to file and reports findings through sc. It stops
// early when the budget of sc is exhausted or ctx is done, and returns the
// number of accepted findings.
func (s *Scanner) Scan(ctx context.Context, file *source.File, sc *pass.ScanContext) int {
	span, ctx := trace.Start(ctx, trace.ScopeAnalyzer, "scan")
	text := file.Text()
	runeOffs := source.RuneOffsets(text)

	total := 0
	for i := range s.rules {
		if sc.Exhausted() || ctx.Err() != nil {
			break
		}
		n, err := s.apply(ctx, &s.rules[i], file, text, runeOffs, sc)
		total += n
		if err != nil {
			s.log.Warn().Err(err).Str("rule", s.rules[i].ID).Str("path", file.Path).Msg("rule stopped early")
		}
	}
	span.WithExtra("findings", strconv.Itoa(total)).End("")
	return total
}

func (s *Scanner) apply(ctx context.Context, r *compiledRule, file *source.File, text string, runeOffs []uint32, sc *pass.ScanContext) (int, error) {
	span, _ := trace.Start(ctx, trace.ScopeRule, "rule:"+r.ID)
	defer span.End("")

	accepted := 0
	m, err := r.re.FindStringMatch(text)
	for ; m != nil && err == nil; m, err = r.re.FindNextMatch(m) {
		if ctx.Err() != nil {
			return accepted, ctx.Err()
		}
		primary := matchSpan(file.ID, runeOffs, m.Index, m.Length, r.Trim)
		b := diag.ReportWarning(sc, r.Code, primary, r.Message).WithSource(r.Citation).WithRule(r.ID)
		for _, sug := range r.Suggestions {
			b.WithNote(primary, sug)
		}
		if b.Emit() {
			accepted++
			continue
		}
		if sc.Exhausted() {
			return accepted, nil
		}
	}
	if err != nil {
		return accepted, errors.Join(errMatch, err)
	}
	return accepted, nil
}

var errMatch = errors.New("pattern match failed")

// matchSpan converts rune-indexed match bounds into a byte span.
func matchSpan(file source.FileID, runeOffs []uint32, index, length int, trim Trim) source.Span {
	start, end := index, index+length
	if trim == TrimEdges {
		start++
		end--
	}
	last := len(runeOffs) - 1
	start = min(max(start, 0), last)
	end = min(max(end, start), last)
	return source.Span{File: file, Start: runeOffs[start], End: runeOffs[end]}
}
