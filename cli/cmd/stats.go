package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/fuselage-sh/fuselage/cli/reader"
	"github.com/fuselage-sh/fuselage/cli/render"
)

// StatsCommand returns the stats command with subcommands.
// Stats returns aggregated, derived facts about a loaded bundle.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show aggregated statistics",
		Subcommands: []*cli.Command{
			statsBundleCommand(),
		},
	}
}

func statsBundleCommand() *cli.Command {
	return &cli.Command{
		Name:   "bundle",
		Usage:  "Show bundle resource statistics (counts by type and policy)",
		Flags:  TUIReadOnlyFlags(),
		Action: statsBundleAction,
	}
}

func statsBundleAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	if c.Bool("tui") {
		return r.RenderTUI("stats_bundle", reader.StatsBundle())
	}

	return r.Render(reader.StatsBundle())
}
