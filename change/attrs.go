package change

import (
	"os"

	"github.com/fuselage-sh/fuselage/runctx"
)

// AttributeChangerSpec configures AttributeChanger. Empty User/Group
// means "leave as-is"; a nil Mode means "leave as-is".
type AttributeChangerSpec struct {
	Path  string
	User  string
	Group string
	Mode  *os.FileMode
}

// AttributeChanger brings path's owner/group/mode in line with spec,
// emitting chown/chmod only for the attributes that actually differ.
func AttributeChanger(ctx runctx.Context, spec AttributeChangerSpec) (bool, error) {
	if !ctx.Platform.Exists(spec.Path) {
		return false, nil
	}

	fi, err := ctx.Platform.Stat(spec.Path)
	if err != nil {
		return false, err
	}

	changed := false

	wantUid, wantGid := fi.Uid, fi.Gid
	haveOwnerChange := false
	if spec.User != "" {
		pw, err := ctx.Platform.GetPwnam(spec.User)
		if err != nil {
			return changed, err
		}
		if pw.Uid != fi.Uid {
			wantUid = pw.Uid
			haveOwnerChange = true
		}
	}
	if spec.Group != "" {
		gr, err := ctx.Platform.GetGrnam(spec.Group)
		if err != nil {
			return changed, err
		}
		if gr.Gid != fi.Gid {
			wantGid = gr.Gid
			haveOwnerChange = true
		}
	}

	if haveOwnerChange {
		if ctx.Simulate {
			logChown(ctx, spec.Path, wantUid, wantGid)
		} else if err := ctx.Platform.Chown(spec.Path, wantUid, wantGid); err != nil {
			return changed, err
		}
		changed = true
	}

	if spec.Mode != nil {
		want := *spec.Mode
		// Clearing a mode that drops setuid/setgid must also clear those
		// bits explicitly; os.FileMode keeps them outside Perm(), so the
		// permission bits and the setuid/setgid bits are compared
		// separately (type bits such as ModeDir are ignored).
		if fi.Mode.Perm() != want.Perm() || (fi.Mode&(os.ModeSetuid|os.ModeSetgid)) != (want&(os.ModeSetuid|os.ModeSetgid)) {
			if ctx.Simulate {
				logChmod(ctx, spec.Path, want)
			} else if err := ctx.Platform.Chmod(spec.Path, want); err != nil {
				return changed, err
			}
			changed = true
		}
	}

	return changed, nil
}

func logChown(ctx runctx.Context, path string, uid, gid int) {
	if ctx.Logger != nil {
		ctx.Logger.Sugar().Infof("simulate: would chown %s %d:%d", path, uid, gid)
	}
}

func logChmod(ctx runctx.Context, path string, mode os.FileMode) {
	if ctx.Logger != nil {
		ctx.Logger.Sugar().Infof("simulate: would chmod %s %o", path, mode.Perm())
	}
}
