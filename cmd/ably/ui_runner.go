package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ably/internal/engine"
	"ably/internal/source"
	"ably/internal/ui"
)

type checkOutcome struct {
	fs      *source.FileSet
	results []engine.FileResult
	err     error
}

// runCheckWithUI checks files while a Bubble Tea model renders progress on
// stderr; the report itself is printed after the model quits.
func runCheckWithUI(ctx context.Context, eng *engine.Engine, dir string, files []string, jobs int) (*source.FileSet, []engine.FileResult, error) {
	events := make(chan engine.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		fs, results, err := eng.WithProgress(engine.ChannelSink{Ch: events}).CheckFiles(ctx, dir, files, jobs)
		outcomeCh <- checkOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("ably check "+dir, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// модель больше не читает канал
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil && ctx.Err() == nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}
