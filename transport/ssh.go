package transport

import (
	"context"
	"fmt"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
)

// RemoteConfig addresses one remote host for Push/Run.
type RemoteConfig struct {
	// Host is the ssh/scp destination, e.g. "deploy@10.0.0.5".
	Host string
	// Port is the SSH port; 0 uses the binary's default (22).
	Port int
	// IdentityFile is an optional private key path (-i).
	IdentityFile string
	// SSHBinary overrides the "ssh" binary name/path. Defaults to "ssh".
	SSHBinary string
	// SCPBinary overrides the "scp" binary name/path. Defaults to "scp".
	SCPBinary string
}

// Remote is a single local ssh/scp binary wrapper: not a full
// Fabric-equivalent remote-execution library, just enough to push an
// archive and drive a remote agent over one connection per call.
type Remote struct {
	cfg      RemoteConfig
	platform platform.Platform
}

// NewRemote creates a Remote that shells out through plat, the way
// change.ShellCommand drives every other process spawn in this codebase.
func NewRemote(plat platform.Platform, cfg RemoteConfig) *Remote {
	if cfg.SSHBinary == "" {
		cfg.SSHBinary = "ssh"
	}
	if cfg.SCPBinary == "" {
		cfg.SCPBinary = "scp"
	}
	return &Remote{cfg: cfg, platform: plat}
}

// Push copies localPath to remotePath on the configured host via scp.
func (r *Remote) Push(ctx context.Context, localPath, remotePath string) error {
	argv := append(r.scpFlags(), localPath, r.cfg.Host+":"+remotePath)
	res, err := r.platform.CheckCall(ctx, platform.CommandSpec{Argv: argv})
	if err != nil {
		return fuserrors.Wrap(fuserrors.KindCommand, "", fmt.Errorf("transport: scp push %q: %w (stderr: %s)", localPath, err, res.Stderr))
	}
	return nil
}

// Run executes command on the remote host over ssh and returns its
// captured stdout/stderr and exit code.
func (r *Remote) Run(ctx context.Context, command string) (platform.CommandResult, error) {
	argv := append(r.sshFlags(), r.cfg.Host, command)
	res, err := r.platform.CheckCall(ctx, platform.CommandSpec{Argv: argv})
	if err != nil {
		return res, fuserrors.Wrap(fuserrors.KindCommand, "", fmt.Errorf("transport: ssh run %q: %w", command, err))
	}
	return res, nil
}

func (r *Remote) sshFlags() []string {
	argv := []string{r.cfg.SSHBinary}
	if r.cfg.Port != 0 {
		argv = append(argv, "-p", fmt.Sprintf("%d", r.cfg.Port))
	}
	if r.cfg.IdentityFile != "" {
		argv = append(argv, "-i", r.cfg.IdentityFile)
	}
	return argv
}

func (r *Remote) scpFlags() []string {
	argv := []string{r.cfg.SCPBinary}
	if r.cfg.Port != 0 {
		argv = append(argv, "-P", fmt.Sprintf("%d", r.cfg.Port))
	}
	if r.cfg.IdentityFile != "" {
		argv = append(argv, "-i", r.cfg.IdentityFile)
	}
	return argv
}
