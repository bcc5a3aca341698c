package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/fuselage-sh/fuselage/cli/reader"
	"github.com/fuselage-sh/fuselage/cli/render"
)

// listWarningThreshold is the number of items above which we warn about using --limit.
const listWarningThreshold = 100

// isStderrTTY returns true if stderr is a TTY.
func isStderrTTY() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// ListCommand returns the list command with subcommands.
// List returns thin slices (not inspect-level detail).
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List entities (bundle resources)",
		Subcommands: []*cli.Command{
			listResourcesCommand(),
		},
	}
}

func listResourcesCommand() *cli.Command {
	return &cli.Command{
		Name:  "resources",
		Usage: "List a bundle's resources",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "type",
				Usage: "Filter by resource type: File, Execute, Service, ...",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of resources to return (0 = no limit)",
				Value: 0,
			},
		),
		Action: listResourcesAction,
	}
}

func listResourcesAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	// TUI not supported for list commands
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for list commands", 1)
	}

	opts := reader.ListResourcesOptions{
		Type:  c.String("type"),
		Limit: c.Int("limit"),
	}

	results := reader.ListResources(opts)

	// Warn if output is large and --limit was not specified (TTY only to avoid noise in pipelines)
	if len(results) > listWarningThreshold && opts.Limit == 0 && isStderrTTY() {
		fmt.Fprintf(os.Stderr, "Warning: returning %d results. Consider using --limit to reduce output.\n\n", len(results))
	}

	return r.Render(results)
}
