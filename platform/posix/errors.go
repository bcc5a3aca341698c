package posix

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
)

// classifyPathError maps a stdlib path-operation error onto the engine's
// fixed error taxonomy, the same discriminator role lode.classifyError
// plays for storage failures in the teacher repo.
func classifyPathError(op, path string, err error) error {
	if err == nil {
		return nil
	}

	var pathErr *os.PathError
	underlying := err
	if errors.As(err, &pathErr) {
		underlying = pathErr.Err
	}

	switch {
	case errors.Is(underlying, syscall.ENOTDIR):
		return fuserrors.Wrapf(fuserrors.KindPathComponentNotDirectory, "", err, "%s %s: a path component is not a directory", op, path)
	case errors.Is(underlying, os.ErrNotExist), errors.Is(underlying, syscall.ENOENT):
		return fuserrors.Wrapf(fuserrors.KindPathComponentMissing, "", err, "%s %s: path component missing", op, path)
	case errors.Is(underlying, syscall.ELOOP):
		return fuserrors.Wrapf(fuserrors.KindDanglingSymlink, "", err, "%s %s: symlink loop", op, path)
	default:
		return fuserrors.Wrapf(fuserrors.KindExecution, "", err, "%s %s", op, path)
	}
}

func asExitError(err error, target **exec.ExitError) bool {
	return errors.As(err, target)
}
