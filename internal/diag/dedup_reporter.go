package diag

import "ably/internal/source"

type dedupKey struct {
	file   source.FileID
	start  uint32
	end    uint32
	source string
	msg    string
}

// DedupReporter wraps another Reporter and suppresses exact duplicates: same
// primary span, citation and message. Suppressed diagnostics count as accepted.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(d Diagnostic) bool {
	if r == nil {
		return false
	}
	key := dedupKey{
		file:   d.Primary.File,
		start:  d.Primary.Start,
		end:    d.Primary.End,
		source: d.Source,
		msg:    d.Message,
	}
	if _, ok := r.seen[key]; ok {
		return true
	}
	if r.next == nil || !r.next.Report(d) {
		return false
	}
	r.seen[key] = struct{}{}
	return true
}
