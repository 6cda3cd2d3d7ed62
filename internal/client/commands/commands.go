// Package commands holds the client subcommands of the cfish CLI.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/cjquines/cfish/internal/client"
)

// GlobalFlags holds common configuration for all client commands
type GlobalFlags struct {
	Config   string `short:"c" long:"config" default:"cfish-client.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" long:"server" help:"Server URL to connect to (overrides config)"`
	Player   string `short:"p" long:"player" help:"Player name (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	LogFile  string `long:"log-file" help:"Log file path (overrides config)"`
	NoColor  bool   `long:"no-color" help:"Disable colour output"`
}

// LoadConfig loads the client config and applies command line overrides
func LoadConfig(flags *GlobalFlags) (*client.ClientConfig, error) {
	cfg, err := client.LoadClientConfig(flags.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	applyOverrides(cfg, flags)
	return cfg, nil
}

func applyOverrides(cfg *client.ClientConfig, flags *GlobalFlags) {
	if flags.Server != "" {
		cfg.Server.URL = flags.Server
	}
	if flags.Player != "" {
		cfg.Player.Name = flags.Player
	}
	if flags.LogLevel != "" {
		cfg.UI.LogLevel = flags.LogLevel
	}
	if flags.LogFile != "" {
		cfg.UI.LogFile = flags.LogFile
	}
	if flags.NoColor {
		color := false
		cfg.UI.Color = &color
	}
}

// promptName asks for a player name when none is configured
func promptName(cfg *client.ClientConfig, in io.Reader, out io.Writer) error {
	if cfg.Player.Name != "" {
		return nil
	}
	_, _ = fmt.Fprint(out, "Enter your player name: ")
	var input string
	_, _ = fmt.Fscanln(in, &input)
	cfg.Player.Name = strings.TrimSpace(input)
	if cfg.Player.Name == "" {
		return fmt.Errorf("player name is required")
	}
	return nil
}

// NewLogger creates a logger writing to w at the configured level
func NewLogger(w io.Writer, level string) *log.Logger {
	logger := log.New(w)
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.WarnLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// openLogFile truncates and opens the client log
func openLogFile(cfg *client.ClientConfig) (*os.File, error) {
	f, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
