//go:build unix

package posix

import (
	"os/exec"
	"syscall"

	"github.com/fuselage-sh/fuselage/platform"
)

// applyCredential sets the child process's uid/gid when spec requests a
// user/group other than the current process identity.
func applyCredential(cmd *exec.Cmd, spec platform.CommandSpec) {
	if spec.Uid == nil && spec.Gid == nil {
		return
	}
	cred := &syscall.Credential{}
	if spec.Uid != nil {
		cred.Uid = uint32(*spec.Uid)
	}
	if spec.Gid != nil {
		cred.Gid = uint32(*spec.Gid)
	}
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Credential = cred
}

// setUmask applies mask for the duration of a CheckCall and returns a
// closure that restores the process umask. The change engine runs
// single-threaded (spec §5), so there is no risk of another goroutine
// observing the transient umask.
func setUmask(mask int) func() {
	old := syscall.Umask(mask)
	return func() { syscall.Umask(old) }
}
