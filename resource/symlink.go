package resource

import (
	"github.com/fuselage-sh/fuselage/argument"
	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/policy"
	"github.com/fuselage-sh/fuselage/provider"
	"github.com/fuselage-sh/fuselage/runctx"
)

var symlinkSchema = []argument.Spec{
	{Name: "name", Kind: argument.FullPath},
	{Name: "to", Kind: argument.FullPath},
	{Name: "force", Kind: argument.Boolean},
}

// Symlink converges a single symbolic link pointing at `to`.
type Symlink struct {
	Base
}

func NewSymlink(raw map[string]any) (*Symlink, error) {
	sp := &SymlinkProvider{}
	policies := map[string]policy.Policy{
		"apply": {
			Name:      "apply",
			Default:   true,
			Signature: policy.And{policy.Present("name"), policy.Present("to")},
			Providers: provider.Registry{sp},
		},
		"remove": {
			Name:      "remove",
			Signature: policy.Present("name"),
			Providers: provider.Registry{sp},
		},
	}
	b, err := NewBase("Symlink", symlinkSchema, policies, raw)
	if err != nil {
		return nil, err
	}
	s := &Symlink{Base: b}
	if s.id == "" {
		s.id = "Symlink[" + s.stringField("name") + "]"
	}
	if s.policyName == "" {
		s.policyName = "apply"
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Symlink) Name() string { return s.stringField("name") }
func (s *Symlink) To() string   { return s.stringField("to") }
func (s *Symlink) Force() bool {
	v, _ := s.value("force").(bool)
	return v
}

func (s *Symlink) Validate() error { return s.validatePolicy(s) }

func (s *Symlink) Apply(ctx runctx.Context) (bool, error) {
	ctx = ctx.WithResource(s.id)
	prov, err := s.selectProvider(s, ctx.Platform)
	if err != nil {
		return false, err
	}
	return prov.Apply(ctx, s)
}

func (s *Symlink) Serialize() map[string]any {
	out := map[string]any{"name": s.Name()}
	if s.Present("to") {
		out["to"] = s.To()
	}
	if s.Present("force") {
		out["force"] = s.Force()
	}
	if s.policyName != "apply" {
		out["policy"] = s.policyName
	}
	return out
}

// SymlinkProvider implements apply/remove for Symlink. It raises
// DanglingSymlink when the link's target does not exist, unless force
// is set.
type SymlinkProvider struct{}

func (p *SymlinkProvider) Name() string { return "symlink" }

func (p *SymlinkProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*Symlink)
	return ok && (policyName == "apply" || policyName == "remove")
}

func (p *SymlinkProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	s := res.(*Symlink)
	if s.Policy() == "remove" {
		if !ctx.Platform.LExists(s.Name()) {
			return false, nil
		}
		if ctx.Simulate {
			return true, nil
		}
		return true, ctx.RaiseOrLog(ctx.Platform.Unlink(s.Name()))
	}

	if !ctx.Platform.Exists(s.To()) && !s.Force() {
		return false, ctx.RaiseOrLog(fuserrors.New(fuserrors.KindDanglingSymlink, s.id,
			"symlink target "+s.To()+" does not exist"))
	}

	if ctx.Platform.LExists(s.Name()) {
		if cur, err := ctx.Platform.Readlink(s.Name()); err == nil && cur == s.To() {
			return false, nil
		}
	}

	if ctx.Simulate {
		return true, nil
	}

	if ctx.Platform.LExists(s.Name()) {
		if err := ctx.Platform.Unlink(s.Name()); err != nil {
			return true, ctx.RaiseOrLog(err)
		}
	}
	return true, ctx.RaiseOrLog(ctx.Platform.Symlink(s.To(), s.Name()))
}
