package resource

import (
	"github.com/fuselage-sh/fuselage/argument"
	"github.com/fuselage-sh/fuselage/change"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/policy"
	"github.com/fuselage-sh/fuselage/provider"
	"github.com/fuselage-sh/fuselage/runctx"
)

var scmSchema = []argument.Spec{
	{Name: "name", Kind: argument.FullPath},
	{Name: "scm", Kind: argument.String, Default: func(argument.Context) any { return "git" }},
	{Name: "repository", Kind: argument.String},
	{Name: "revision", Kind: argument.String, Default: func(argument.Context) any { return "HEAD" }},
}

// Scm converges a working copy at name to repository's revision. Only
// the git backend ships a provider; any other `scm` value fails
// provider selection with NoSuitableProviders.
type Scm struct {
	Base
}

func NewScm(raw map[string]any) (*Scm, error) {
	gp := &GitProvider{}
	policies := map[string]policy.Policy{
		"checkout": {
			Name:      "checkout",
			Default:   true,
			Signature: policy.And{policy.Present("name"), policy.Present("repository")},
			Providers: provider.Registry{gp},
		},
	}
	b, err := NewBase("Scm", scmSchema, policies, raw)
	if err != nil {
		return nil, err
	}
	s := &Scm{Base: b}
	if s.id == "" {
		s.id = "Scm[" + s.stringField("name") + "]"
	}
	if s.policyName == "" {
		s.policyName = "checkout"
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scm) Name() string       { return s.stringField("name") }
func (s *Scm) SourceType() string { return s.stringField("scm") }
func (s *Scm) Repository() string { return s.stringField("repository") }
func (s *Scm) Revision() string   { return s.stringField("revision") }

func (s *Scm) Validate() error { return s.validatePolicy(s) }

func (s *Scm) Apply(ctx runctx.Context) (bool, error) {
	ctx = ctx.WithResource(s.id)
	prov, err := s.selectProvider(s, ctx.Platform)
	if err != nil {
		return false, err
	}
	return prov.Apply(ctx, s)
}

func (s *Scm) Serialize() map[string]any {
	out := map[string]any{"name": s.Name(), "repository": s.Repository()}
	if s.Present("scm") {
		out["scm"] = s.SourceType()
	}
	if s.Present("revision") {
		out["revision"] = s.Revision()
	}
	return out
}

// GitProvider converges a git working copy: clones if the destination
// doesn't yet hold a repository, otherwise fetches and resets to
// revision.
type GitProvider struct{}

func (p *GitProvider) Name() string { return "git" }

func (p *GitProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	s, ok := res.(*Scm)
	return ok && policyName == "checkout" && s.SourceType() == "git"
}

func (p *GitProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	s := res.(*Scm)

	if !ctx.Platform.IsDir(s.Name() + "/.git") {
		_, err := change.ShellCommand(ctx, change.ShellCommandSpec{
			Command: []string{"git", "clone", s.Repository(), s.Name()},
		})
		if raised := ctx.RaiseOrLog(err); raised != nil {
			return false, raised
		}
		_, err = change.ShellCommand(ctx, change.ShellCommandSpec{
			Command: []string{"git", "-C", s.Name(), "checkout", s.Revision()},
		})
		return true, ctx.RaiseOrLog(err)
	}

	_, err := change.ShellCommand(ctx, change.ShellCommandSpec{
		Command: []string{"git", "-C", s.Name(), "fetch", "--all"},
	})
	if raised := ctx.RaiseOrLog(err); raised != nil {
		return false, raised
	}
	_, err = change.ShellCommand(ctx, change.ShellCommandSpec{
		Command: []string{"git", "-C", s.Name(), "reset", "--hard", s.Revision()},
	})
	return true, ctx.RaiseOrLog(err)
}
