package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/fuselage-sh/fuselage/cli/reader"
	"github.com/fuselage-sh/fuselage/cli/render"
)

// DebugCommand returns the debug command with subcommands.
// Debug commands are opt-in diagnostic tools. They are read-only by
// default; any mutation must be explicitly requested via --commit.
func DebugCommand() *cli.Command {
	return &cli.Command{
		Name:  "debug",
		Usage: "Diagnostic tools (trigger resolution, event state)",
		Subcommands: []*cli.Command{
			debugTriggerCommand(),
			debugEventStateCommand(),
		},
	}
}

func debugTriggerCommand() *cli.Command {
	return &cli.Command{
		Name:      "trigger",
		Usage:     "Resolve a resource's outstanding subscription trigger",
		ArgsUsage: "<resource-id>",
		Flags: append(ReadOnlyFlags(),
			&cli.BoolFlag{
				Name:  "commit",
				Usage: "Clear the trigger from the on-disk event state file",
			},
		),
		Action: debugTriggerAction,
	}
}

func debugTriggerAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("resource-id required", 1)
	}
	id := c.Args().First()
	commit := c.Bool("commit")

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	// TUI not supported for debug commands
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for debug commands", 1)
	}

	resp, err := reader.DebugTrigger(id, commit)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	return r.Render(resp)
}

func debugEventStateCommand() *cli.Command {
	return &cli.Command{
		Name:  "eventstate",
		Usage: "Show the on-disk event state file's contents",
		Flags: append(ReadOnlyFlags(),
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Include the list of pending trigger ids",
			},
		),
		Action: debugEventStateAction,
	}
}

func debugEventStateAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for debug commands", 1)
	}

	verbose := c.Bool("verbose")
	return r.Render(reader.DebugEventState(verbose))
}
