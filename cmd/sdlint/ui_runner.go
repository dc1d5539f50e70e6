package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sdlint/internal/driver"
	"sdlint/internal/pipeline"
	"sdlint/internal/source"
	"sdlint/internal/ui"
)

type lintOutcome struct {
	results []driver.FileResult
	err     error
}

// runLintWithUI runs LintFiles with its progress events feeding the terminal
// display. The lint itself runs on a goroutine so the UI loop owns the
// terminal until the run settles.
func runLintWithUI(ctx context.Context, title string, fileSet *source.FileSet, files []string, opts driver.Options) ([]driver.FileResult, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan lintOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = pipeline.ChannelSink{Ch: events}
		res, err := driver.LintFiles(ctx, fileSet, files, optsCopy)
		outcomeCh <- lintOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()

	// The display stops reading once it exits; keep the channel moving so
	// an early quit cannot wedge the lint goroutine.
	go func() {
		for range events {
		}
	}()

	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
