package runner

import (
	"github.com/urfave/cli/v2"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
)

// infoLevel mirrors Python logging's INFO=20, the anchor spec's verbosity
// formula (`INFO - 10*(v-q)`) is defined against.
const infoLevel = 20

// SetupFromCmdline parses argv (argv[0] is the program name, matching
// os.Args) into Options using the authoritative flag list from spec §6:
// --state, -s/--simulate, --resume, --no-resume, --no-changes-ok,
// -v/--verbose (count), -q/--quiet (count).
func SetupFromCmdline(argv []string) (Options, error) {
	var opts Options
	var verbose, quiet int

	app := &cli.App{
		Name:            "fuselage",
		Usage:           "apply a resource bundle",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "state", Usage: "state directory", Destination: &opts.StatePath},
			&cli.BoolFlag{Name: "simulate", Aliases: []string{"s"}, Destination: &opts.Simulate},
			&cli.BoolFlag{Name: "resume", Destination: &opts.Resume},
			&cli.BoolFlag{Name: "no-resume", Destination: &opts.NoResume},
			&cli.BoolFlag{Name: "no-changes-ok", Destination: &opts.NoChangesOK},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Count: &verbose},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Count: &quiet},
		},
		Action: func(*cli.Context) error { return nil },
	}

	if err := app.Run(argv); err != nil {
		return Options{}, fuserrors.Wrap(fuserrors.KindParse, "", err)
	}

	opts.Verbosity = infoLevel - 10*(verbose-quiet)
	if opts.Resume && opts.NoResume {
		return Options{}, fuserrors.New(fuserrors.KindParse, "", "--resume and --no-resume are mutually exclusive")
	}
	return opts, nil
}
