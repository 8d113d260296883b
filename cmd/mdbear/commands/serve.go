package commands

import (
	"time"

	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
	"git.home.luguber.info/inful/mdbear/internal/preview"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Config       string `short:"c" help:"Configuration file to use for serving the site" default:"config.toml" type:"path"`
	Port         int    `short:"p" help:"Port number to serve the site on (default serve.port, 3000)"`
	Debounce     string `name:"debounce" help:"Quiet window for coalescing changes, e.g. 100ms; 0 rebuilds once per event"`
	NoLiveReload bool   `name:"no-live-reload" help:"Disable LiveReload SSE and script injection"`
	Open         bool   `name:"open" help:"Open the site in the default browser once the server is listening"`
}

func (s *ServeCmd) Run(g *Global, _ *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	opts := preview.Options{
		ConfigPath:        s.Config,
		Port:              s.Port,
		DisableLiveReload: s.NoLiveReload,
		OpenBrowser:       s.Open,
		Logger:            logger(g),
	}
	if s.Debounce != "" {
		d, err := time.ParseDuration(s.Debounce)
		if err != nil || d < 0 {
			return errors.ValidationError("--debounce must be a non-negative duration").
				WithCause(err).WithContext("value", s.Debounce).Build()
		}
		opts.Debounce = &d
	}
	return preview.Serve(ctx, opts)
}
