package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"dartlift/internal/dartrt"
	"dartlift/internal/lift"
	"dartlift/internal/snapshot"
	"dartlift/internal/ui"
)

type liftOutcome struct {
	run *lift.RunResult
	err error
}

func runLiftWithUI(ctx context.Context, title string, store *snapshot.Store, thread *dartrt.ThreadInfo, opts lift.Options) (*lift.RunResult, error) {
	events := make(chan lift.Event, 256)
	outcomeCh := make(chan liftOutcome, 1)

	total := 0
	for _, fn := range store.Functions() {
		if _, ok := store.Code(fn.Addr); ok {
			total++
		}
	}

	go func() {
		optsCopy := opts
		optsCopy.Progress = events
		run, err := lift.LiftAll(ctx, store, thread, optsCopy)
		outcomeCh <- liftOutcome{run: run, err: err}
	}()

	model := ui.NewProgressModel(title, total, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.run, uiErr
	}
	return outcome.run, outcome.err
}
