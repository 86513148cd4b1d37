package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/offices/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		List     commands.ListCmd     `cmd:"" help:"List offices"`
		Get      commands.GetCmd      `cmd:"" help:"Show an office"`
		Create   commands.CreateCmd   `cmd:"" help:"Create an office"`
		Delete   commands.DeleteCmd   `cmd:"" help:"Delete an office"`
		Assign   commands.AssignCmd   `cmd:"" help:"Assign an employee to an office"`
		Unassign commands.UnassignCmd `cmd:"" help:"Remove an employee from an office"`
		Token    commands.TokenCmd    `cmd:"" help:"Generate a JWT token"`
		Keygen   commands.KeygenCmd   `cmd:"" help:"Generate a JWT signing key pair"`
		Debug    bool                 `help:"Enable debug mode."`
		Version  kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
