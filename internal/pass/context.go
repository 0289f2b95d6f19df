// Package pass holds the state shared by all analyzers during one check of
// one document.
package pass

import (
	"sync"

	"ably/internal/diag"
)

// DefaultMaxProblems is the problem budget when the host supplies none.
const DefaultMaxProblems = 1000

// ScanContext carries the per-pass problem budget and the occurrence index
// used to tell identical markup apart. It is safe for concurrent use; the
// engine still feeds it in a fixed analyzer order so output is deterministic.
type ScanContext struct {
	mu          sync.Mutex
	remaining   int
	exhausted   bool
	occurrences map[string]int
	front       diag.Reporter // dedup -> budget -> sink
}

// NewScanContext creates a context that forwards accepted diagnostics to sink.
// maxProblems <= 0 selects DefaultMaxProblems.
func NewScanContext(maxProblems int, sink diag.Reporter) *ScanContext {
	if maxProblems <= 0 {
		maxProblems = DefaultMaxProblems
	}
	c := &ScanContext{
		remaining:   maxProblems,
		occurrences: make(map[string]int),
	}
	c.front = diag.NewDedupReporter(diag.ReporterFunc(func(d diag.Diagnostic) bool {
		return c.spend(d, sink)
	}))
	return c
}

// Report forwards d unless it duplicates an earlier diagnostic of this pass.
// Each forwarded diagnostic consumes one unit of budget; once the budget is
// spent every later call is rejected.
func (c *ScanContext) Report(d diag.Diagnostic) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.front.Report(d)
}

// spend runs with c.mu held.
func (c *ScanContext) spend(d diag.Diagnostic, sink diag.Reporter) bool {
	if c.remaining <= 0 {
		c.exhausted = true
		return false
	}
	if sink != nil && !sink.Report(d) {
		return false
	}
	c.remaining--
	if c.remaining == 0 {
		c.exhausted = true
	}
	return true
}

// Exhausted reports whether the budget is spent.
func (c *ScanContext) Exhausted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exhausted
}

// Remaining returns the unspent budget.
func (c *ScanContext) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// NextOccurrence returns how many times key was seen before in this pass and
// records one more sighting.
func (c *ScanContext) NextOccurrence(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.occurrences[key]
	c.occurrences[key] = n + 1
	return n
}
