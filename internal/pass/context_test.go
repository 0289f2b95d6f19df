package pass

import (
	"sync"
	"testing"

	"ably/internal/diag"
	"ably/internal/source"
)

func TestScanContextBudget(t *testing.T) {
	bag := diag.NewBag()
	ctx := NewScanContext(2, diag.BagReporter{Bag: bag})
	d := func(msg string) diag.Diagnostic {
		return diag.NewWarning(diag.StrInfo, source.Span{}, msg)
	}

	if !ctx.Report(d("a")) || ctx.Exhausted() {
		t.Fatal("first report must be accepted")
	}
	// точный дубликат не тратит бюджет
	if !ctx.Report(d("a")) || ctx.Remaining() != 1 {
		t.Fatalf("duplicate must be absorbed, remaining=%d", ctx.Remaining())
	}
	if !ctx.Report(d("b")) {
		t.Fatal("second report must be accepted")
	}
	if !ctx.Exhausted() || ctx.Remaining() != 0 {
		t.Fatalf("budget should be spent, remaining=%d", ctx.Remaining())
	}
	if ctx.Report(d("c")) {
		t.Fatal("report after exhaustion must be rejected")
	}
	if bag.Len() != 2 {
		t.Fatalf("bag len = %d, want 2", bag.Len())
	}
}

func TestScanContextDefaultBudget(t *testing.T) {
	ctx := NewScanContext(0, nil)
	if ctx.Remaining() != DefaultMaxProblems {
		t.Fatalf("remaining = %d", ctx.Remaining())
	}
}

func TestScanContextRejectedSinkKeepsBudget(t *testing.T) {
	ctx := NewScanContext(3, diag.ReporterFunc(func(diag.Diagnostic) bool { return false }))
	if ctx.Report(diag.Diagnostic{}) {
		t.Fatal("rejected by sink must be rejected")
	}
	if ctx.Remaining() != 3 {
		t.Fatalf("remaining = %d, want 3", ctx.Remaining())
	}
}

func TestNextOccurrenceConcurrent(t *testing.T) {
	ctx := NewScanContext(0, nil)
	var wg sync.WaitGroup
	seen := make([]int, 50)
	for i := range seen {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seen[i] = ctx.NextOccurrence("<p>")
		}(i)
	}
	wg.Wait()
	used := make(map[int]bool)
	for _, n := range seen {
		if used[n] {
			t.Fatalf("ordinal %d handed out twice", n)
		}
		used[n] = true
	}
	if got := ctx.NextOccurrence("<p>"); got != 50 {
		t.Fatalf("next ordinal = %d, want 50", got)
	}
	if got := ctx.NextOccurrence("<span>"); got != 0 {
		t.Fatalf("fresh key ordinal = %d", got)
	}
}
