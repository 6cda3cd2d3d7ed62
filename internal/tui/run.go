// Package tui is the terminal interface of the cfish client.
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/cjquines/cfish/internal/client"
)

// Run connects c and drives the terminal UI until the user quits or ctx
// ends
func Run(ctx context.Context, c *client.Client, logger *log.Logger, opts ...tea.ProgramOption) error {
	model := NewModel(c, logger)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(model, opts...)

	// Send blocks while Update runs, and Update itself can trigger updates.
	c.SetOnUpdate(func() { go program.Send(UpdateMsg{}) })
	defer c.SetOnUpdate(nil)

	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = c.Disconnect() }()

	go func() {
		select {
		case <-c.Done():
			program.Send(DisconnectedMsg{})
		case <-ctx.Done():
		}
	}()

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
