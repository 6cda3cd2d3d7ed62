package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the fish server"`
	Client  ClientCmd        `cmd:"" help:"Play or browse rooms from the terminal"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cfish"),
		kong.Description("Multiplayer Fish (Literature) card game server and terminal client"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	// Client subcommands read the shared client flags.
	err := ctx.Run(&cli.Client.GlobalFlags)
	ctx.FatalIfErrorf(err)
}
