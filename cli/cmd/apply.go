package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/fuselage-sh/fuselage/asset"
	assetlocal "github.com/fuselage-sh/fuselage/asset/local"
	assets3 "github.com/fuselage-sh/fuselage/asset/s3"
	"github.com/fuselage-sh/fuselage/bundle"
	"github.com/fuselage-sh/fuselage/config"
	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/notify"
	notifyredis "github.com/fuselage-sh/fuselage/notify/redis"
	notifywebhook "github.com/fuselage-sh/fuselage/notify/webhook"
	"github.com/fuselage-sh/fuselage/platform/posix"
	"github.com/fuselage-sh/fuselage/runner"
)

// ApplyCommand returns the apply command: the only mutating entrypoint.
// It loads a bundle, resolves runner options from CLI flags layered over
// an optional config file, and drives a single convergence pass.
func ApplyCommand() *cli.Command {
	return &cli.Command{
		Name:      "apply",
		Usage:     "Apply a bundle against the local host",
		ArgsUsage: "<bundle-path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Path to a fuselage.yaml config file"},
			&cli.BoolFlag{Name: "resume", Usage: "Resume from a prior saved event state"},
			&cli.BoolFlag{Name: "no-resume", Usage: "Discard a prior saved event state and start fresh"},
			&cli.BoolFlag{Name: "no-changes-ok", Usage: "Exit successfully even if the bundle left nothing changed"},
			&cli.BoolFlag{Name: "simulate", Usage: "Report what would change without touching the host"},
			&cli.IntFlag{Name: "verbosity", Usage: "Base log verbosity before -v/-q adjustment"},
			&cli.StringFlag{Name: "state-path", Usage: "Directory holding the resumable event state file"},
			&cli.BoolFlag{Name: "watch", Usage: "After applying once, keep re-applying whenever a watched path changes"},
		},
		Action: applyAction,
	}
}

func applyAction(c *cli.Context) error {
	parseExitCode := fuserrors.New(fuserrors.KindParse, "", "").ExitCode()

	if c.NArg() < 1 {
		return cli.Exit("bundle-path required", parseExitCode)
	}
	bundlePath := c.Args().First()

	var cfg *config.Config
	if p := c.String("config"); p != "" {
		loaded, err := config.Load(p)
		if err != nil {
			return cli.Exit(err.Error(), parseExitCode)
		}
		cfg = loaded
	} else {
		cfg = &config.Config{}
	}

	data, err := os.ReadFile(bundlePath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("cannot read bundle %q: %v", bundlePath, err), parseExitCode)
	}
	b, err := bundle.Loads(data)
	if err != nil {
		return cli.Exit(err.Error(), fuserrors.ExitCodeOf(err))
	}

	assetStore, err := buildAssetStore(cfg.Asset)
	if err != nil {
		return cli.Exit(err.Error(), parseExitCode)
	}
	if assetStore != nil {
		defer assetStore.Close()
	}

	notifier, err := buildNotifier(cfg.Notify)
	if err != nil {
		return cli.Exit(err.Error(), parseExitCode)
	}
	if notifier != nil {
		defer notifier.Close()
	}

	opts := runner.Options{
		Resume:      resolveBool(c, "resume", cfg.Resume),
		NoResume:    resolveBool(c, "no-resume", cfg.NoResume),
		NoChangesOK: resolveBool(c, "no-changes-ok", cfg.NoChangesOK),
		Simulate:    resolveBool(c, "simulate", cfg.Simulate),
		Verbosity:   resolveInt(c, "verbosity", cfg.Verbosity),
		StatePath:   resolveString(c, "state-path", cfg.StatePath),
		Assets:      assetStore,
		Notifier:    notifier,
	}

	plat := posix.New()
	run, err := runner.New(b, plat, opts)
	if err != nil {
		return cli.Exit(err.Error(), fuserrors.ExitCodeOf(err))
	}

	if err := run.Run(); err != nil {
		return cli.Exit(err.Error(), fuserrors.ExitCodeOf(err))
	}
	fmt.Fprintf(c.App.Writer, "applied %s\n", b.ID())

	if !c.Bool("watch") {
		return nil
	}

	fmt.Fprintf(c.App.Writer, "watching for changes (ctrl-c to stop)\n")
	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		close(stop)
	}()

	if err := run.Watch(stop); err != nil {
		return cli.Exit(err.Error(), fuserrors.ExitCodeOf(err))
	}
	return nil
}

// resolveString returns the CLI flag value if explicitly set, else the
// config value if non-empty, else the urfave default.
func resolveString(c *cli.Context, flag string, configVal string) string {
	if c.IsSet(flag) {
		return c.String(flag)
	}
	if configVal != "" {
		return configVal
	}
	return c.String(flag)
}

// resolveInt returns the CLI flag value if explicitly set, else the
// config value if non-zero, else the urfave default.
func resolveInt(c *cli.Context, flag string, configVal int) int {
	if c.IsSet(flag) {
		return c.Int(flag)
	}
	if configVal != 0 {
		return configVal
	}
	return c.Int(flag)
}

// resolveBool returns the CLI flag value if explicitly set, else the
// config value if true, else the urfave default.
func resolveBool(c *cli.Context, flag string, configVal bool) bool {
	if c.IsSet(flag) {
		return c.Bool(flag)
	}
	if configVal {
		return configVal
	}
	return c.Bool(flag)
}

// buildAssetStore constructs the configured asset.Store, or nil if no
// backend was selected.
func buildAssetStore(ac config.AssetConfig) (asset.Store, error) {
	switch ac.Backend {
	case "":
		return nil, nil
	case "local":
		if ac.Path == "" {
			return nil, fmt.Errorf("asset.path is required for the local backend")
		}
		return assetlocal.New(ac.Path)
	case "s3":
		store, err := assets3.New(context.Background(), assets3.Config{
			Bucket:       ac.Bucket,
			Prefix:       ac.Prefix,
			Region:       ac.Region,
			Endpoint:     ac.Endpoint,
			UsePathStyle: ac.PathStyle,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown asset backend %q", ac.Backend)
	}
}

// buildNotifier constructs the configured notify.Notifier, or nil if no
// type was selected.
func buildNotifier(nc config.NotifyConfig) (notify.Notifier, error) {
	switch nc.Type {
	case "":
		return nil, nil
	case "webhook":
		retries := notifywebhook.DefaultRetries
		if nc.Retries != nil {
			retries = *nc.Retries
		}
		return notifywebhook.New(notifywebhook.Config{
			URL:     nc.URL,
			Headers: nc.Headers,
			Timeout: nc.Timeout.Duration,
			Retries: retries,
		})
	case "redis":
		retries := notifyredis.DefaultRetries
		if nc.Retries != nil {
			retries = *nc.Retries
		}
		return notifyredis.New(notifyredis.Config{
			URL:     nc.URL,
			Channel: nc.Channel,
			Timeout: nc.Timeout.Duration,
			Retries: retries,
		})
	default:
		return nil, fmt.Errorf("unknown notify type %q", nc.Type)
	}
}
