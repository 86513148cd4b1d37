package commands

import (
	"time"

	"github.com/wolfeidau/offices/internal/client"
)

type Globals struct {
	Debug   bool
	Version string
}

// ClientFlags are shared by every command that talks to the API.
type ClientFlags struct {
	Server   string        `help:"Server URL" default:"http://localhost:8080" env:"OFFICES_SERVER"`
	Token    string        `help:"Bearer token, see the token command" env:"OFFICES_TOKEN"`
	Timeout  time.Duration `help:"Request timeout" default:"30s"`
	CacheDir string        `help:"directory for the HTTP response cache, in memory when empty" default:"" env:"OFFICES_CACHE_DIR"`
}

func (f *ClientFlags) client(globals *Globals) *client.Client {
	return client.New(client.Config{
		ServerURL: f.Server,
		Token:     f.Token,
		Timeout:   f.Timeout,
		CacheDir:  f.CacheDir,
		Debug:     globals.Debug,
	})
}
