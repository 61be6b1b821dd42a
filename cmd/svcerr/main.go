package main

import (
	stdErrors "errors"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/svcerr/cmd/svcerr/commands"
	"git.home.luguber.info/inful/svcerr/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{}

	parser := kong.Must(cli,
		kong.Name("svcerr"),
		kong.Description("Inspect, classify and record SDK errors."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		var parseErr *kong.ParseError
		if stdErrors.As(err, &parseErr) {
			parser.FatalIfErrorf(err)
		}
		global.Errors().HandleError(err)
		return
	}

	if err := ctx.Run(cli); err != nil {
		global.Errors().HandleError(err)
	}
}
