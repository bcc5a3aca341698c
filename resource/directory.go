package resource

import (
	"os"
	"strconv"

	"github.com/fuselage-sh/fuselage/argument"
	"github.com/fuselage-sh/fuselage/change"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/policy"
	"github.com/fuselage-sh/fuselage/provider"
	"github.com/fuselage-sh/fuselage/runctx"
)

var directorySchema = []argument.Spec{
	{Name: "name", Kind: argument.FullPath},
	{Name: "owner", Kind: argument.String},
	{Name: "group", Kind: argument.String},
	{Name: "mode", Kind: argument.Octal, Default: func(argument.Context) any { return 0755 }},
	{Name: "recursive", Kind: argument.Boolean},
}

// Directory converges an owned, moded directory. Missing parent
// components are created whether or not `recursive` is set.
type Directory struct {
	Base
}

func NewDirectory(raw map[string]any) (*Directory, error) {
	dp := &DirectoryProvider{}
	policies := map[string]policy.Policy{
		"apply": {
			Name:      "apply",
			Default:   true,
			Signature: policy.Present("name"),
			Providers: provider.Registry{dp},
		},
		"remove": {
			Name:      "remove",
			Signature: policy.Present("name"),
			Providers: provider.Registry{dp},
		},
		"remove-recursive": {
			Name:      "remove-recursive",
			Signature: policy.Present("name"),
			Providers: provider.Registry{dp},
		},
	}
	b, err := NewBase("Directory", directorySchema, policies, raw)
	if err != nil {
		return nil, err
	}
	d := &Directory{Base: b}
	if d.id == "" {
		d.id = "Directory[" + d.stringField("name") + "]"
	}
	if d.policyName == "" {
		d.policyName = "apply"
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Directory) Name() string  { return d.stringField("name") }
func (d *Directory) Owner() string { return d.stringField("owner") }
func (d *Directory) Group() string { return d.stringField("group") }
func (d *Directory) Recursive() bool {
	v, _ := d.value("recursive").(bool)
	return v
}
func (d *Directory) Mode() os.FileMode {
	v, _ := d.value("mode").(int)
	return os.FileMode(v)
}

func (d *Directory) Validate() error { return d.validatePolicy(d) }

func (d *Directory) Apply(ctx runctx.Context) (bool, error) {
	ctx = ctx.WithResource(d.id)
	prov, err := d.selectProvider(d, ctx.Platform)
	if err != nil {
		return false, err
	}
	return prov.Apply(ctx, d)
}

func (d *Directory) Serialize() map[string]any {
	out := map[string]any{"name": d.Name()}
	if d.Present("owner") {
		out["owner"] = d.Owner()
	}
	if d.Present("group") {
		out["group"] = d.Group()
	}
	if d.Present("mode") {
		out["mode"] = strconv.FormatInt(int64(d.Mode().Perm()), 8)
	}
	if d.Present("recursive") {
		out["recursive"] = d.Recursive()
	}
	if d.policyName != "apply" {
		out["policy"] = d.policyName
	}
	return out
}

// DirectoryProvider implements apply/remove/remove-recursive for
// Directory.
type DirectoryProvider struct{}

func (p *DirectoryProvider) Name() string { return "directory" }

func (p *DirectoryProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*Directory)
	if !ok {
		return false
	}
	switch policyName {
	case "apply", "remove", "remove-recursive":
		return true
	default:
		return false
	}
}

func (p *DirectoryProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	d := res.(*Directory)
	switch d.Policy() {
	case "remove", "remove-recursive":
		if !ctx.Platform.Exists(d.Name()) {
			return false, nil
		}
		if ctx.Simulate {
			return true, nil
		}
		if d.Policy() == "remove-recursive" {
			_, err := change.ShellCommand(ctx, change.ShellCommandSpec{Command: []string{"/bin/rm", "-rf", d.Name()}})
			return true, ctx.RaiseOrLog(err)
		}
		return true, ctx.RaiseOrLog(ctx.Platform.Unlink(d.Name()))
	default:
		mode := d.Mode()
		changed, err := change.EnsureDirectory(ctx, change.EnsureDirectorySpec{
			Path:      d.Name(),
			User:      d.Owner(),
			Group:     d.Group(),
			Mode:      &mode,
			Recursive: d.Recursive(),
		})
		return changed, ctx.RaiseOrLog(err)
	}
}
