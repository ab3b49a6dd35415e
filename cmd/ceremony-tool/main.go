package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/nealmcb/psf-tuf-runbook/cmd/ceremony-tool/cli"
	"github.com/nealmcb/psf-tuf-runbook/exectool"
	"github.com/nealmcb/psf-tuf-runbook/internal/version"
	"github.com/nealmcb/psf-tuf-runbook/x/ctl"
)

type app struct {
	cli.Cli

	Generate cli.GenerateCmd `cmd:"" help:"Run the key generation ceremony for one device"`
	Check    cli.CheckCmd    `cmd:"" help:"Verify ceremony prerequisites without touching the device"`
}

func main() {
	realMain(os.Args, os.Stdout, os.Stderr, os.Exit)
}

func realMain(args []string, out io.Writer, errout io.Writer, exit func(int)) {
	cl := app{
		Cli: cli.Cli{},
	}
	cl.Cli.WithErrWriter(errout).
		WithWriter(out)

	parser, err := kong.New(&cl,
		kong.Name("ceremony-tool"),
		kong.Description("CLI tool for HSM key generation ceremonies"),
		kong.Writers(out, errout),
		kong.Exit(exit),
		ctl.BoolPtrMapper,
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version.Current().String(),
		})
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args[1:])
	parser.FatalIfErrorf(err)

	if ctx != nil {
		if cl.Debug {
			// in DEBUG mode print command line, with secrets masked
			_, _ = fmt.Fprintf(ctx.Stdout, "#\n# %s\n#\n", strings.Join(exectool.Redact(args), " "))
		}
		err = ctx.Run(&cl.Cli)
		ctx.FatalIfErrorf(err)
	}
}
