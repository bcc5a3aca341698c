// Package main builds a standalone agent binary that carries its bundle
// baked in via go:embed, instead of reading one from a file path at
// runtime. Useful for shipping a single self-contained executable to a
// fleet of hosts.
//
// Usage:
//
//	fuselage-agent [options]
package main

import (
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/fuselage-sh/fuselage/asset"
	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform/posix"
	"github.com/fuselage-sh/fuselage/runner"
)

//go:embed resources.json
var embedded embed.FS

func main() {
	app := &cli.App{
		Name:           "fuselage-agent",
		Usage:          "Apply this agent's baked-in bundle against the local host",
		ExitErrHandler: exitErrHandler,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "resume", Usage: "Resume from a prior saved event state"},
			&cli.BoolFlag{Name: "no-resume", Usage: "Discard a prior saved event state and start fresh"},
			&cli.BoolFlag{Name: "no-changes-ok", Usage: "Exit successfully even if nothing changed"},
			&cli.BoolFlag{Name: "simulate", Usage: "Report what would change without touching the host"},
			&cli.IntFlag{Name: "verbosity", Usage: "Base log verbosity before -v/-q adjustment"},
			&cli.StringFlag{Name: "state-path", Usage: "Directory holding the resumable event state file", Value: "/var/run/fuselage"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	opts := runner.Options{
		Resume:      c.Bool("resume"),
		NoResume:    c.Bool("no-resume"),
		NoChangesOK: c.Bool("no-changes-ok"),
		Simulate:    c.Bool("simulate"),
		Verbosity:   c.Int("verbosity"),
		StatePath:   c.String("state-path"),
		Assets:      assetNoop{},
	}

	plat := posix.New()
	bundled, err := runner.NewBundled(plat, opts, runner.EmbedLoader(embedded, "resources.json"))
	if err != nil {
		return cli.Exit(err.Error(), fuserrors.ExitCodeOf(err))
	}

	if err := bundled.Run(); err != nil {
		return cli.Exit(err.Error(), fuserrors.ExitCodeOf(err))
	}

	fmt.Println("applied")
	return nil
}

// assetNoop rejects any bundle:// reference: this agent's embedded
// bundle carries no File "source" content, only inline contents.
type assetNoop struct{}

func (assetNoop) Put(string) (string, error) { return "", errors.New("fuselage-agent: no asset store configured") }
func (assetNoop) Get(string) ([]byte, error)  { return nil, errors.New("fuselage-agent: no asset store configured") }
func (assetNoop) Close() error                { return nil }

var _ asset.Store = assetNoop{}

// exitErrHandler preserves exit codes set via cli.Exit / the
// fuserrors.Error ExitCoder contract.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
