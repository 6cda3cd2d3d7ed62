package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/cjquines/cfish/internal/client"
	"github.com/cjquines/cfish/internal/tui"
	"github.com/muesli/termenv"
)

// JoinCommand joins a room and starts the TUI
type JoinCommand struct {
	Room string `arg:"" optional:"" help:"Room to join (defaults to the configured room)"`
}

func (cmd *JoinCommand) Run(flags *GlobalFlags) error {
	cfg, err := LoadConfig(flags)
	if err != nil {
		return err
	}
	if cmd.Room != "" {
		cfg.Player.Room = cmd.Room
	}
	if err := promptName(cfg, os.Stdin, os.Stdout); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := openLogFile(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := NewLogger(logFile, cfg.UI.LogLevel)

	if !cfg.ColorEnabled() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logger.Info("Starting cfish client",
		"server", cfg.Server.URL,
		"player", cfg.Player.Name,
		"room", cfg.Player.Room)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.NewClient(cfg.Server.URL, cfg.Player.Room, cfg.Player.Name, logger)
	if err := tui.Run(ctx, c, logger); err != nil {
		return fmt.Errorf("failed to join room %s: %w", cfg.Player.Room, err)
	}
	return nil
}
