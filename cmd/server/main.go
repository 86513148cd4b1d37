package main

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/wolfeidau/offices/cmd/server/internal/commands"
	"github.com/wolfeidau/offices/internal/auth"
	"github.com/wolfeidau/offices/internal/config"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode."`
		Version kong.VersionFlag
		Config  kong.ConfigFlag   `help:"Load configuration from a YAML file."`
		Serve   commands.ServeCmd `cmd:"" help:"Start the offices API server"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version":    version,
			"jwt_issuer": auth.DefaultIssuer,
		},
		kong.Configuration(config.YAML, config.DefaultPaths...),
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
