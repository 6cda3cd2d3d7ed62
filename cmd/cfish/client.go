package main

import (
	"github.com/cjquines/cfish/internal/client/commands"
)

// ClientCmd groups the terminal client commands
type ClientCmd struct {
	commands.GlobalFlags `embed:""`

	Join commands.JoinCommand      `cmd:"" default:"withargs" help:"Join a room and play"`
	List commands.ListRoomsCommand `cmd:"" help:"List open rooms"`
	Init commands.InitCommand      `cmd:"" help:"Write a starter config file"`
}
