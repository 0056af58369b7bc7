package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"paw/internal/driver"
	"paw/internal/ui"
)

type buildOutcome struct {
	result *driver.Result
	err    error
}

// runBuildWithUI runs the driver in a goroutine and renders its
// progress events until the build finishes and the channel closes.
func runBuildWithUI(ctx context.Context, title string, files []string, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan buildOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Build(ctx, opts)
		outcomeCh <- buildOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
