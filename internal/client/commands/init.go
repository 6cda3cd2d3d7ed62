package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/cjquines/cfish/internal/client"
	"github.com/cjquines/cfish/internal/fileutil"
)

// InitCommand writes a starter client config to the --config path
type InitCommand struct {
	Force bool `short:"f" help:"Overwrite an existing config file"`
}

func (cmd *InitCommand) Run(flags *GlobalFlags) error {
	return cmd.write(flags, os.Stdout)
}

func (cmd *InitCommand) write(flags *GlobalFlags, out io.Writer) error {
	cfg := client.DefaultClientConfig()
	applyOverrides(cfg, flags)
	if _, err := client.WebSocketURL(cfg.Server.URL); err != nil {
		return err
	}

	if err := fileutil.WriteNew(flags.Config, cfg.Encode(), 0o644, cmd.Force); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Wrote %s\n", flags.Config)
	return nil
}
