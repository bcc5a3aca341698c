package change

import (
	"os"

	"github.com/fuselage-sh/fuselage/runctx"
)

// EnsureFileSpec configures EnsureFile.
type EnsureFileSpec struct {
	Path      string
	Contents  []byte
	User      string
	Group     string
	Mode      *os.FileMode
	Sensitive bool
}

// EnsureFile composes EnsureContents and AttributeChanger, reporting
// changed if either step mutated system state.
func EnsureFile(ctx runctx.Context, spec EnsureFileSpec) (bool, error) {
	contentChanged, err := EnsureContents(ctx, EnsureContentsSpec{
		Path:      spec.Path,
		Contents:  spec.Contents,
		Sensitive: spec.Sensitive,
	})
	if err != nil {
		return contentChanged, err
	}

	attrChanged, err := AttributeChanger(ctx, AttributeChangerSpec{
		Path:  spec.Path,
		User:  spec.User,
		Group: spec.Group,
		Mode:  spec.Mode,
	})
	return contentChanged || attrChanged, err
}

// EnsureDirectorySpec configures EnsureDirectory.
type EnsureDirectorySpec struct {
	Path      string
	User      string
	Group     string
	Mode      *os.FileMode
	Recursive bool
}

// EnsureDirectory ensures Path exists as a directory, then runs
// AttributeChanger over it. Missing parent directories are always
// created (Platform.MakeDirs); Recursive is not consulted, so a
// non-recursive spec does not fail on a missing parent.
func EnsureDirectory(ctx runctx.Context, spec EnsureDirectorySpec) (bool, error) {
	created := false
	if !ctx.Platform.IsDir(spec.Path) {
		if ctx.Simulate {
			if ctx.Logger != nil {
				ctx.Logger.Sugar().Infof("simulate: would mkdir %s", spec.Path)
			}
		} else if err := ctx.Platform.MakeDirs(spec.Path); err != nil {
			return false, err
		}
		created = true
	}

	attrChanged, err := AttributeChanger(ctx, AttributeChangerSpec{
		Path:  spec.Path,
		User:  spec.User,
		Group: spec.Group,
		Mode:  spec.Mode,
	})
	return created || attrChanged, err
}
