package diag

import (
	"testing"

	"ably/internal/source"
)

func TestBagSortOrder(t *testing.T) {
	bag := NewBag()
	mk := func(start, end uint32, src, msg string) Diagnostic {
		return NewWarning(StrInfo, source.Span{Start: start, End: end}, msg).WithSource(src)
	}
	bag.Add(mk(10, 20, "WCAG 2.2 | 1.1.1", "c"))
	bag.Add(mk(5, 9, "WCAG 2.1 | 1.3.4", "b"))
	bag.Add(mk(10, 15, "WCAG 2.1 | 2.1.1", "d"))
	bag.Add(mk(10, 20, "WCAG 2.1 | 1.3.1", "e"))
	bag.Add(mk(10, 20, "WCAG 2.1 | 1.3.1", "f"))
	bag.Sort()

	var got string
	for _, d := range bag.Items() {
		got += d.Message
	}
	if got != "bdefc" {
		t.Fatalf("sorted order = %q, want %q", got, "bdefc")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag()
	r := NewDedupReporter(BagReporter{Bag: bag})
	d := NewWarning(W3CMapped, source.Span{Start: 1, End: 2}, "dup").WithSource("WCAG 2.2 | 4.1.1")

	for i := 0; i < 3; i++ {
		if !r.Report(d) {
			t.Fatalf("report #%d rejected", i)
		}
	}
	if !r.Report(d.WithSource("WCAG 2.2 | 1.1.1")) {
		t.Fatal("different citation rejected")
	}
	if bag.Len() != 2 {
		t.Fatalf("bag len = %d, want 2", bag.Len())
	}
}

func TestReportBuilderEmitOnce(t *testing.T) {
	calls := 0
	r := ReporterFunc(func(Diagnostic) bool { calls++; return true })
	b := ReportWarning(r, StrDivButton, source.Span{}, "msg").
		WithSource("WCAG 2.1 | 2.1.1").
		WithNote(source.Span{}, "one").
		WithNote(source.Span{}, "two")
	if !b.Emit() || !b.Emit() {
		t.Fatal("emit should report acceptance")
	}
	if calls != 1 {
		t.Fatalf("reporter called %d times", calls)
	}
	if got := b.Diagnostic().Suggestions(); len(got) != 2 || got[1] != "two" {
		t.Fatalf("suggestions = %v", got)
	}
}

func TestCodeID(t *testing.T) {
	tests := map[Code]string{
		StrNavWithoutList: "STR1001",
		WhaMapped:         "WHA2001",
		W3CMapped:         "W3C3001",
		ConContrast:       "CON4001",
		UnknownCode:       "E0000",
	}
	for code, want := range tests {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %s, want %s", code, got, want)
		}
	}
}
