package change

import (
	"bytes"
	"os"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/fuselage-sh/fuselage/runctx"
)

// EnsureContentsSpec configures EnsureContents.
type EnsureContentsSpec struct {
	Path      string
	Contents  []byte // nil means "ensure an empty file exists" (touch)
	Sensitive bool
}

// EnsureContents ensures path holds Contents, writing only when the
// current content differs. A nil Contents touches an empty file into
// existence without overwriting non-empty content on a repeat run.
func EnsureContents(ctx runctx.Context, spec EnsureContentsSpec) (bool, error) {
	desired := spec.Contents

	current, err := ctx.Platform.Get(spec.Path)
	exists := err == nil

	if desired == nil {
		if exists {
			return false, nil
		}
		if ctx.Simulate {
			logTouch(ctx, spec.Path)
			return true, nil
		}
		return true, ctx.RaiseOrLog(ctx.Platform.Put(spec.Path, []byte{}, 0644))
	}

	if exists && bytes.Equal(current, desired) {
		return false, nil
	}

	logDiff(ctx, spec.Path, current, desired, spec.Sensitive)

	if ctx.Simulate {
		return true, nil
	}

	mode := os.FileMode(0644)
	if exists {
		if fi, statErr := ctx.Platform.Stat(spec.Path); statErr == nil {
			mode = fi.Mode
		}
	}
	return true, ctx.RaiseOrLog(ctx.Platform.Put(spec.Path, desired, mode))
}

func logTouch(ctx runctx.Context, path string) {
	if ctx.Logger != nil {
		ctx.Logger.Sugar().Infof("simulate: would touch %s", path)
	}
}

func logDiff(ctx runctx.Context, path string, current, desired []byte, sensitive bool) {
	if ctx.Logger == nil {
		return
	}
	if sensitive || !utf8.Valid(current) || !utf8.Valid(desired) || bytes.ContainsRune(current, 0) || bytes.ContainsRune(desired, 0) {
		ctx.Logger.Sugar().Infof("%s: no diff (sensitive or binary content)", path)
		return
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(desired)),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil || text == "" {
		return
	}
	ctx.Logger.Sugar().Infof("%s:\n%s", path, text)
}
