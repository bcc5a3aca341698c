// Package change implements the five canonical idempotent operators that
// every provider composes to converge a resource. Each reports whether it
// mutated system state and routes failures through runctx.Context so
// simulate mode can downgrade them to a log record.
package change

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/shlex"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/runctx"
)

// ShellCommandSpec describes one command invocation: an argv list, or a
// shell-form string split by POSIX shlex rules.
type ShellCommandSpec struct {
	Command  []string
	Shell    string // used only if Command is empty
	Cwd      string
	Env      map[string]string
	User     string
	Group    string
	Umask    *int
	Expected int // default 0
	Stdin    []byte
}

// ShellCommand executes spec via the platform adapter. It always reports
// changed=true: commands are presumed side-effectful, and idempotence is
// the calling provider's responsibility, not this operator's.
func ShellCommand(ctx runctx.Context, spec ShellCommandSpec) (bool, error) {
	argv, err := resolveArgv(spec)
	if err != nil {
		return false, err
	}

	if err := verifyBinary(ctx.Platform, argv[0], spec.Cwd); err != nil {
		return false, err
	}

	if spec.Cwd != "" && !ctx.Platform.IsDir(spec.Cwd) {
		return false, fuserrors.New(fuserrors.KindPathComponentNotDirectory, ctx.Resource,
			"cwd "+spec.Cwd+" is not a directory")
	}

	var uid, gid *int
	if spec.User != "" {
		pw, err := ctx.Platform.GetPwnam(spec.User)
		if err != nil {
			return false, fuserrors.Wrap(fuserrors.KindInvalidUser, ctx.Resource, err)
		}
		uid = &pw.Uid
	}
	if spec.Group != "" {
		gr, err := ctx.Platform.GetGrnam(spec.Group)
		if err != nil {
			return false, fuserrors.Wrap(fuserrors.KindInvalidGroup, ctx.Resource, err)
		}
		gid = &gr.Gid
	}

	expected := spec.Expected

	if ctx.Simulate {
		if ctx.Logger != nil {
			ctx.Logger.Sugar().Infof("simulate: would run %v", argv)
		}
		return true, nil
	}

	env := os.Environ()
	for k, v := range spec.Env {
		env = append(env, k+"="+v)
	}

	cs := platform.CommandSpec{
		Argv:     argv,
		Dir:      spec.Cwd,
		Env:      env,
		Uid:      uid,
		Gid:      gid,
		Umask:    spec.Umask,
		Stdin:    spec.Stdin,
		Expected: expected,
	}

	_, err = ctx.Platform.CheckCall(context.Background(), cs)
	if err != nil {
		return true, fuserrors.Wrap(fuserrors.KindCommand, ctx.Resource, err)
	}
	return true, nil
}

func resolveArgv(spec ShellCommandSpec) ([]string, error) {
	if len(spec.Command) > 0 {
		return spec.Command, nil
	}
	argv, err := shlex.Split(spec.Shell)
	if err != nil {
		return nil, fuserrors.Wrap(fuserrors.KindParse, "", err)
	}
	if len(argv) == 0 {
		return nil, fuserrors.New(fuserrors.KindParse, "", "empty command")
	}
	return argv, nil
}

// verifyBinary checks that argv[0] resolves to an executable: an absolute
// path, a ./relative path under cwd, or a name found on PATH.
func verifyBinary(p platform.Platform, bin, cwd string) error {
	switch {
	case filepath.IsAbs(bin):
		if !p.Exists(bin) {
			return fuserrors.New(fuserrors.KindBinaryMissing, "", bin+" not found")
		}
	case strings.HasPrefix(bin, "."):
		full := filepath.Join(cwd, bin)
		if !p.Exists(full) {
			return fuserrors.New(fuserrors.KindBinaryMissing, "", full+" not found")
		}
	default:
		if _, err := exec.LookPath(bin); err != nil {
			return fuserrors.New(fuserrors.KindBinaryMissing, "", bin+" not found on PATH")
		}
	}
	return nil
}

// parseOctal renders mode's permission bits as an octal string. Nothing
// in the package calls it; AttributeChanger passes the os.FileMode to
// Platform.Chmod directly.
func parseOctal(mode os.FileMode) string {
	return strconv.FormatUint(uint64(mode.Perm()), 8)
}
