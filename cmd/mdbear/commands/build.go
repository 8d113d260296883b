package commands

import (
	"fmt"

	"git.home.luguber.info/inful/mdbear/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Config     string `short:"c" help:"Configuration file to use for building the site" default:"config.toml" type:"path"`
	CheckLinks bool   `name:"check-links" help:"Report relative links to missing files after the build"`
}

func (b *BuildCmd) Run(g *Global, _ *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	report, err := site.Build(ctx, b.Config, site.Options{Logger: logger(g), CheckLinks: b.CheckLinks})
	if err != nil {
		return err
	}
	fmt.Printf("Site built: %s\n", report.Summary())
	for _, s := range report.Skipped {
		fmt.Printf("  skipped %s: %s\n", s.Path, s.Reason)
	}
	for _, w := range report.LinkWarnings {
		fmt.Printf("  broken link in %s: %s\n", w.Page, w.Link)
	}
	return nil
}
