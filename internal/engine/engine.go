// Package engine runs one accessibility pass over a document: the pattern
// scanner, both markup validators and the contrast analyzer, merged into one
// ordered diagnostic list plus the document score.
package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ably/internal/contrast"
	"ably/internal/diag"
	"ably/internal/observ"
	"ably/internal/pass"
	"ably/internal/scan"
	"ably/internal/score"
	"ably/internal/source"
	"ably/internal/trace"
	"ably/internal/validate"
)

type Options struct {
	// MaxProblems bounds the diagnostics of one pass; <= 0 selects
	// pass.DefaultMaxProblems.
	MaxProblems int

	// Scanner nil selects the default rule table.
	Scanner *scan.Scanner
	// WHATWG and W3C nil disable the corresponding validator.
	WHATWG    validate.WHATWGValidator
	W3C       validate.W3CValidator
	Captioner validate.Captioner
	// Contrast nil selects an analyzer with the default cascade and Scheme.
	Contrast *contrast.Analyzer
	Scheme   contrast.SchemeSource

	Logger   *zerolog.Logger
	Progress ProgressSink
}

// Engine is safe for concurrent use; each Check is an independent pass.
type Engine struct {
	opts     Options
	scanner  *scan.Scanner
	contrast *contrast.Analyzer
	log      zerolog.Logger
}

func New(opts Options) (*Engine, error) {
	e := &Engine{opts: opts, log: zerolog.Nop()}
	if opts.Logger != nil {
		e.log = *opts.Logger
	}
	e.scanner = opts.Scanner
	if e.scanner == nil {
		s, err := scan.New(scan.Options{Logger: &e.log})
		if err != nil {
			return nil, fmt.Errorf("compile pattern rules: %w", err)
		}
		e.scanner = s
	}
	e.contrast = opts.Contrast
	if e.contrast == nil {
		e.contrast = contrast.New(contrast.Options{Scheme: opts.Scheme, Logger: &e.log})
	}
	return e, nil
}

// MaxProblems returns the per-pass budget in effect.
func (e *Engine) MaxProblems() int {
	if e.opts.MaxProblems <= 0 {
		return pass.DefaultMaxProblems
	}
	return e.opts.MaxProblems
}

// WithMaxProblems returns an engine sharing e's collaborators with a
// different budget.
func (e *Engine) WithMaxProblems(n int) *Engine {
	cp := *e
	cp.opts.MaxProblems = n
	return &cp
}

// WithProgress returns an engine reporting to sink.
func (e *Engine) WithProgress(sink ProgressSink) *Engine {
	cp := *e
	cp.opts.Progress = sink
	return &cp
}

// Check runs one pass over the document id of fs. Validator and service
// failures degrade to missing findings; the only errors returned are context
// cancellation and unparsable input.
func (e *Engine) Check(ctx context.Context, fs *source.FileSet, id source.FileID) (*Result, error) {
	file := fs.Get(id)
	passID := uuid.NewString()
	log := e.log.With().Str("pass", passID).Str("path", file.Path).Logger()
	span, ctx := trace.Start(ctx, trace.ScopePass, "check")
	span.WithExtra("path", file.Path)
	defer span.End("")

	timer := observ.NewTimer()
	bag := diag.NewBag()
	sc := pass.NewScanContext(e.opts.MaxProblems, diag.BagReporter{Bag: bag})

	emitProgress(e.opts.Progress, Event{File: file.Path, Stage: StageScan, Status: StatusWorking})
	idx := timer.Begin("scan")
	n := e.scanner.Scan(ctx, file, sc)
	timer.End(idx, strconv.Itoa(n)+" findings")

	// внешние валидаторы и контраст не зависят друг от друга
	emitProgress(e.opts.Progress, Event{File: file.Path, Stage: StageValidate, Status: StatusWorking})
	var (
		whatwg []validate.WHATWGMessage
		w3c    []validate.W3CFinding
		rep    *contrast.Report
	)
	g, gctx := errgroup.WithContext(ctx)
	if e.opts.WHATWG != nil {
		g.Go(func() error {
			start := time.Now()
			msgs, err := e.opts.WHATWG.Validate(gctx, file.Text())
			if err != nil {
				log.Warn().Err(err).Msg("whatwg validator failed")
			}
			whatwg = msgs
			timer.Record("whatwg", time.Since(start), strconv.Itoa(len(msgs))+" messages")
			return nil
		})
	}
	if e.opts.W3C != nil {
		g.Go(func() error {
			start := time.Now()
			msgs, err := e.opts.W3C.Validate(gctx, file.Text())
			if err != nil {
				log.Warn().Err(err).Msg("w3c validator failed")
			}
			w3c = validate.ResolveW3C(gctx, file, msgs, e.opts.Captioner, &log)
			timer.Record("w3c", time.Since(start), strconv.Itoa(len(w3c))+" mapped")
			return nil
		})
	}
	g.Go(func() error {
		start := time.Now()
		r, err := e.contrast.Analyze(gctx, file, sc)
		if err != nil {
			return err
		}
		rep = r
		timer.Record("contrast", time.Since(start), strconv.Itoa(len(r.Findings))+" findings")
		return nil
	})
	if err := g.Wait(); err != nil {
		emitProgress(e.opts.Progress, Event{File: file.Path, Stage: StageContrast, Status: StatusError, Err: err})
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// бюджет расходуется в фиксированном порядке: A, B, контраст
	emitProgress(e.opts.Progress, Event{File: file.Path, Stage: StageEmit, Status: StatusWorking})
	idx = timer.Begin("emit")
	existing := append([]diag.Diagnostic(nil), bag.Items()...)
	validate.EmitWHATWG(file, whatwg, existing, sc)
	validate.EmitW3C(file, w3c, sc)
	contrast.Emit(file, rep, sc)
	bag.Sort()
	timer.End(idx, "")

	idx = timer.Begin("score")
	res := &Result{
		PassID:      passID,
		File:        file,
		Diagnostics: append([]diag.Diagnostic(nil), bag.Items()...),
		Score:       score.Compute(file.Text()),
		Exhausted:   sc.Exhausted(),
	}
	timer.End(idx, "")
	res.Timings = timer.Report()

	span.WithExtra("diagnostics", strconv.Itoa(len(res.Diagnostics)))
	log.Debug().
		Int("diagnostics", len(res.Diagnostics)).
		Int("score", res.Score.Total).
		Bool("exhausted", res.Exhausted).
		Object("timings", res.Timings).
		Msg("pass finished")
	return res, nil
}
