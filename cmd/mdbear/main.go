package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdbear/cmd/mdbear/commands"
	"git.home.luguber.info/inful/mdbear/internal/foundation/errors"
	"git.home.luguber.info/inful/mdbear/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("mdbear"),
		kong.Description("A static site generator for Bear Blog style websites."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()}, &cli)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
