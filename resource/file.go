package resource

import (
	"fmt"
	"os"
	"strconv"

	"github.com/fuselage-sh/fuselage/argument"
	"github.com/fuselage-sh/fuselage/change"
	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/policy"
	"github.com/fuselage-sh/fuselage/provider"
	"github.com/fuselage-sh/fuselage/runctx"
)

var fileSchema = []argument.Spec{
	{Name: "name", Kind: argument.FullPath},
	{Name: "contents", Kind: argument.String},
	{Name: "source", Kind: argument.File},
	{Name: "owner", Kind: argument.String},
	{Name: "group", Kind: argument.String},
	{Name: "mode", Kind: argument.Octal, Default: func(argument.Context) any { return 0644 }},
	{Name: "sensitive", Kind: argument.Boolean},
}

// File converges the content, ownership and mode of a single regular
// file.
type File struct {
	Base
}

// NewFile constructs a File resource from raw argument values. Its
// policies (apply/remove/watched) are fixed for every instance, mirroring
// the class-level policy table a metaclass-driven registry would hold.
func NewFile(raw map[string]any) (*File, error) {
	policies := filePolicies()
	b, err := NewBase("File", fileSchema, policies, raw)
	if err != nil {
		return nil, err
	}
	f := &File{Base: b}
	if f.id == "" {
		f.id = "File[" + f.stringField("name") + "]"
	}
	if f.policyName == "" {
		f.policyName = "apply"
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// newImplicitWatchedFile is used by bundle.add() to synthesise a File
// for a `changes`-watched external path.
func newImplicitWatchedFile(path string) (*File, error) {
	f, err := NewFile(map[string]any{"name": path, "policy": "watched"})
	if err != nil {
		return nil, err
	}
	f.implicit = true
	return f, nil
}

// NewImplicitWatchedFile is the bundle package's entry point into
// newImplicitWatchedFile: bundle.Add() calls it once per path named in a
// resource's `changes` argument.
func NewImplicitWatchedFile(path string) (Resource, error) {
	return newImplicitWatchedFile(path)
}

func filePolicies() map[string]policy.Policy {
	fp := &FileProvider{}
	wp := &watchedProvider{}
	return map[string]policy.Policy{
		"apply": {
			Name:      "apply",
			Default:   true,
			Signature: policy.Present("name"),
			Providers: provider.Registry{fp},
		},
		"remove": {
			Name:      "remove",
			Signature: policy.And{policy.Present("name"), policy.Absent("owner"), policy.Absent("group")},
			Providers: provider.Registry{fp},
		},
		"watched": {
			Name:      "watched",
			Signature: policy.Present("name"),
			Providers: provider.Registry{wp},
		},
	}
}

func (f *File) Name() string     { return f.stringField("name") }
func (f *File) Contents() string { return f.stringField("contents") }
func (f *File) Owner() string    { return f.stringField("owner") }
func (f *File) Group() string    { return f.stringField("group") }

// Source returns the `source` argument's coerced FileRef: a local path
// not yet addressed into a bundle, or a "bundle://<sha1>" reference an
// asset.Store can resolve.
func (f *File) Source() argument.FileRef {
	v, _ := f.value("source").(argument.FileRef)
	return v
}
func (f *File) Sensitive() bool {
	v, _ := f.value("sensitive").(bool)
	return v
}
func (f *File) Mode() os.FileMode {
	v, _ := f.value("mode").(int)
	return os.FileMode(v)
}

// Validate runs the active policy's precondition at construction time.
func (f *File) Validate() error {
	return f.validatePolicy(f)
}

func (f *File) Apply(ctx runctx.Context) (bool, error) {
	ctx = ctx.WithResource(f.id)
	prov, err := f.selectProvider(f, ctx.Platform)
	if err != nil {
		return false, err
	}
	return prov.Apply(ctx, f)
}

func (f *File) Serialize() map[string]any {
	out := map[string]any{"name": f.Name()}
	if f.Present("contents") {
		out["contents"] = f.Contents()
	}
	if f.Present("owner") {
		out["owner"] = f.Owner()
	}
	if f.Present("group") {
		out["group"] = f.Group()
	}
	if f.Present("mode") {
		out["mode"] = strconv.FormatInt(int64(f.Mode().Perm()), 8)
	}
	if f.Present("sensitive") {
		out["sensitive"] = f.Sensitive()
	}
	if f.Present("source") {
		src := f.Source()
		if src.IsBundleRef() {
			out["source"] = src.BundleRef
		} else if src.Local != "" {
			out["source"] = src.Local
		}
	}
	if f.policyName != "apply" {
		out["policy"] = f.policyName
	}
	return out
}

// FileProvider implements the `apply` and `remove` policies for File.
type FileProvider struct{}

func (p *FileProvider) Name() string { return "file" }

func (p *FileProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*File)
	return ok && (policyName == "apply" || policyName == "remove")
}

func (p *FileProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	f := res.(*File)
	switch f.Policy() {
	case "remove":
		if !ctx.Platform.Exists(f.Name()) {
			return false, nil
		}
		if ctx.Simulate {
			return true, nil
		}
		return true, ctx.RaiseOrLog(ctx.Platform.Unlink(f.Name()))
	default:
		mode := f.Mode()
		contents, err := f.resolveContents(ctx)
		if err != nil {
			return false, ctx.RaiseOrLog(err)
		}
		changed, err := change.EnsureFile(ctx, change.EnsureFileSpec{
			Path:      f.Name(),
			Contents:  contents,
			User:      f.Owner(),
			Group:     f.Group(),
			Mode:      &mode,
			Sensitive: f.Sensitive(),
		})
		return changed, ctx.RaiseOrLog(err)
	}
}

// resolveContents returns the file's desired content: the literal
// `contents` argument when present, else `source` resolved either from
// disk (a local path not yet addressed into a bundle) or from ctx.Assets
// (a "bundle://<sha1>" reference). Absent both, it returns nil, so the
// file is created empty if missing and existing content is left alone.
func (f *File) resolveContents(ctx runctx.Context) ([]byte, error) {
	if f.Present("contents") {
		return []byte(f.Contents()), nil
	}
	if !f.Present("source") {
		return nil, nil
	}
	src := f.Source()
	if src.IsBundleRef() {
		if ctx.Assets == nil {
			return nil, fuserrors.New(fuserrors.KindParse, f.id,
				fmt.Sprintf("resource references %q but no asset store is configured", src.BundleRef))
		}
		return ctx.Assets.Get(src.BundleRef)
	}
	if src.Local != "" {
		return argument.ReadLocal(src.Local)
	}
	return nil, nil
}

// watchedProvider is the no-op mechanism for File's `watched` policy: it
// exists purely as a hash-drift subscription target and never mutates
// the system itself.
type watchedProvider struct{}

func (p *watchedProvider) Name() string { return "watched" }
func (p *watchedProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*File)
	return ok && policyName == "watched"
}
func (p *watchedProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	return false, nil
}
