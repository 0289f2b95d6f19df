package fuzztests

import (
	"context"
	"testing"
	"time"

	"ably/internal/contrast"
	"ably/internal/diag"
	"ably/internal/pass"
	"ably/internal/scan"
	"ably/internal/source"
	"ably/internal/testkit"
)

const maxFuzzInput = 1 << 16 // 64 KiB

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

func FuzzScanner(f *testing.F) {
	addCorpusSeeds(f)
	sc, err := scan.New(scan.Options{MatchTimeout: 500 * time.Millisecond})
	if err != nil {
		f.Fatalf("scan.New: %v", err)
	}
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.html", clampInput(input)))

		bag := diag.NewBag()
		ctx := pass.NewScanContext(pass.DefaultMaxProblems, diag.BagReporter{Bag: bag})
		sc.Scan(context.Background(), file, ctx)
		bag.Sort()
		if err := testkit.CheckDiagnostics(file, bag.Items(), pass.DefaultMaxProblems); err != nil {
			t.Fatal(err)
		}
	})
}

func FuzzContrast(f *testing.F) {
	addCorpusSeeds(f)
	an := contrast.New(contrast.Options{})
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file := fs.Get(fs.AddVirtual("fuzz.html", clampInput(input)))

		bag := diag.NewBag()
		ctx := pass.NewScanContext(pass.DefaultMaxProblems, diag.BagReporter{Bag: bag})
		rep, err := an.Analyze(context.Background(), file, ctx)
		if err != nil {
			return
		}
		contrast.Emit(file, rep, ctx)
		bag.Sort()
		if err := testkit.CheckDiagnostics(file, bag.Items(), pass.DefaultMaxProblems); err != nil {
			t.Fatal(err)
		}
	})
}

func FuzzParseColor(f *testing.F) {
	for _, s := range []string{"#fff", "#123456", "#1234", "rgb(1, 2, 3)", "rgba(0,0,0,0.5)", "rgb(10%, 20%, 30%)", "red", "transparent", "#"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		c, err := contrast.ParseColor(input)
		if err != nil {
			return
		}
		if c.Transparent() {
			return
		}
		r := contrast.Ratio(c.RGB, contrast.RGB{R: 255, G: 255, B: 255})
		if r < 1 || r > 21.0001 {
			t.Fatalf("ratio %v out of range for %q", r, input)
		}
	})
}
