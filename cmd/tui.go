package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/jingletube/internal/shared"
	"github.com/desertthunder/jingletube/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for the songbook and scoreboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.library == nil {
		return fmt.Errorf("%w: song library not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.App.LogPath
	if logPath == "" {
		logPath = "./tmp/jingletube-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(r.library)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// tuiCommand launches the interactive terminal UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive"},
		Usage:   "Browse songs and record scores interactively",
		Action:  r.TUI,
	}
}
