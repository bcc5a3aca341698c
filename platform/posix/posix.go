// Package posix implements platform.Platform against a real POSIX host.
//
// Process execution follows the same shape as the teacher's executor
// process manager (runtime/executor.go in the retrieval pack): build an
// *exec.Cmd, wire pipes explicitly, Start, then Wait and classify the exit.
// Confirmed per SPEC_FULL.md's open questions: POSIX-only, no Windows path.
package posix

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
)

// Posix is the real, POSIX-backed Platform implementation.
type Posix struct{}

// New returns a Posix platform adapter.
func New() *Posix { return &Posix{} }

var _ platform.Platform = (*Posix)(nil)

func (Posix) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (Posix) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (Posix) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (Posix) IsLink(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func (Posix) LExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func (p Posix) Stat(path string) (platform.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return platform.FileInfo{}, classifyPathError("stat", path, err)
	}
	return toFileInfo(info), nil
}

func (p Posix) LStat(path string) (platform.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return platform.FileInfo{}, classifyPathError("lstat", path, err)
	}
	return toFileInfo(info), nil
}

func toFileInfo(info os.FileInfo) platform.FileInfo {
	fi := platform.FileInfo{
		Mode:    info.Mode(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		fi.Uid = int(sys.Uid)
		fi.Gid = int(sys.Gid)
	}
	return fi
}

func (Posix) Readlink(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", classifyPathError("readlink", path, err)
	}
	return target, nil
}

func (Posix) Get(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classifyPathError("read", path, err)
	}
	return data, nil
}

func (Posix) Put(path string, data []byte, mode os.FileMode) error {
	if err := os.WriteFile(path, data, mode); err != nil {
		return classifyPathError("write", path, err)
	}
	return nil
}

func (Posix) MakeDirs(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return classifyPathError("mkdir", path, err)
	}
	return nil
}

func (Posix) Unlink(path string) error {
	if err := os.Remove(path); err != nil {
		return classifyPathError("unlink", path, err)
	}
	return nil
}

func (Posix) Symlink(target, linkPath string) error {
	if err := os.Symlink(target, linkPath); err != nil {
		return classifyPathError("symlink", linkPath, err)
	}
	return nil
}

func (Posix) Chown(path string, uid, gid int) error {
	if err := os.Chown(path, uid, gid); err != nil {
		return classifyPathError("chown", path, err)
	}
	return nil
}

func (Posix) Chmod(path string, mode os.FileMode) error {
	if err := os.Chmod(path, mode); err != nil {
		return classifyPathError("chmod", path, err)
	}
	return nil
}

// CheckCall runs spec to completion. Mirrors ExecutorManager.Start/Wait's
// pipe wiring, but runs synchronously since the engine has no concurrent
// apply path to overlap with (spec §5: single-threaded cooperative-free).
func (Posix) CheckCall(ctx context.Context, spec platform.CommandSpec) (platform.CommandResult, error) {
	if len(spec.Argv) == 0 {
		return platform.CommandResult{}, fuserrors.New(fuserrors.KindExecution, "", "empty command")
	}

	cmd := exec.CommandContext(ctx, spec.Argv[0], spec.Argv[1:]...)
	cmd.Dir = spec.Dir
	if spec.Env != nil {
		cmd.Env = spec.Env
	}
	if spec.Stdin != nil {
		cmd.Stdin = bytes.NewReader(spec.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	applyCredential(cmd, spec)
	if spec.Umask != nil {
		restore := setUmask(*spec.Umask)
		defer restore()
	}

	runErr := cmd.Run()

	result := platform.CommandResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if ok := asExitError(runErr, &exitErr); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return result, fuserrors.Wrap(fuserrors.KindExecution, "", runErr)
		}
	}
	result.ExitCode = exitCode

	expected := spec.Expected
	if exitCode != expected {
		return result, fuserrors.Wrapf(fuserrors.KindCommand, "", commandError{rc: exitCode, stdout: result.Stdout, stderr: result.Stderr},
			"command exited %d, expected %d", exitCode, expected)
	}
	return result, nil
}

type commandError struct {
	rc             int
	stdout, stderr []byte
}

func (c commandError) Error() string {
	return "unexpected return code " + strconv.Itoa(c.rc)
}

func (Posix) GetPwnam(name string) (platform.Passwd, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return platform.Passwd{}, fuserrors.Wrap(fuserrors.KindInvalidUser, "", err)
	}
	return toPasswd(u)
}

func (Posix) GetPwuid(uid int) (platform.Passwd, error) {
	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return platform.Passwd{}, fuserrors.Wrap(fuserrors.KindInvalidUser, "", err)
	}
	return toPasswd(u)
}

func toPasswd(u *user.User) (platform.Passwd, error) {
	uid, _ := strconv.Atoi(u.Uid)
	gid, _ := strconv.Atoi(u.Gid)
	return platform.Passwd{Name: u.Username, Uid: uid, Gid: gid, Home: u.HomeDir, Gecos: u.Name}, nil
}

// GetPwAll enumerates the full user database. /etc/passwd parsing is not
// exposed by os/user, so this reads the file directly; it is used only by
// the `fuselage inspect --users` debug surface, not the core convergence
// path.
func (Posix) GetPwAll() ([]platform.Passwd, error) {
	return parsePasswd("/etc/passwd")
}

func (Posix) GetGrnam(name string) (platform.Group, error) {
	g, err := user.LookupGroup(name)
	if err != nil {
		return platform.Group{}, fuserrors.Wrap(fuserrors.KindInvalidGroup, "", err)
	}
	return toGroup(g)
}

func (Posix) GetGrgid(gid int) (platform.Group, error) {
	g, err := user.LookupGroupId(strconv.Itoa(gid))
	if err != nil {
		return platform.Group{}, fuserrors.Wrap(fuserrors.KindInvalidGroup, "", err)
	}
	return toGroup(g)
}

func toGroup(g *user.Group) (platform.Group, error) {
	gid, _ := strconv.Atoi(g.Gid)
	return platform.Group{Name: g.Name, Gid: gid}, nil
}

func (Posix) GetGrAll() ([]platform.Group, error) {
	return parseGroup("/etc/group")
}

func (Posix) Getuid() int {
	return os.Getuid()
}
