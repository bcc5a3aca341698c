package cmd

import (
	"github.com/fuselage-sh/fuselage/cli/reader"
	"github.com/fuselage-sh/fuselage/cli/render"
	"github.com/urfave/cli/v2"
)

// InspectCommand returns the inspect command with subcommands.
// Inspect returns a deep view of a single entity.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect a single entity (resource, status)",
		Subcommands: []*cli.Command{
			inspectResourceCommand(),
			inspectStatusCommand(),
		},
	}
}

func inspectResourceCommand() *cli.Command {
	return &cli.Command{
		Name:      "resource",
		Usage:     "Inspect a resource by ID",
		ArgsUsage: "<resource-id>",
		Flags:     TUIReadOnlyFlags(),
		Action:    inspectResourceAction,
	}
}

func inspectResourceAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("resource-id required", 1)
	}
	id := c.Args().First()

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	resp, err := reader.InspectResource(id)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if c.Bool("tui") {
		return r.RenderTUI("inspect_resource", resp)
	}

	return r.Render(resp)
}

func inspectStatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Inspect the loaded bundle's identity and resumable event state",
		Flags:  TUIReadOnlyFlags(),
		Action: inspectStatusAction,
	}
}

func inspectStatusAction(c *cli.Context) error {
	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	resp, err := reader.Status()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if c.Bool("tui") {
		return r.RenderTUI("inspect_status", resp)
	}

	return r.Render(resp)
}
