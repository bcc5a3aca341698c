package resource

import (
	"strconv"

	"github.com/fuselage-sh/fuselage/argument"
	"github.com/fuselage-sh/fuselage/change"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/policy"
	"github.com/fuselage-sh/fuselage/provider"
	"github.com/fuselage-sh/fuselage/runctx"
)

var groupSchema = []argument.Spec{
	{Name: "name", Kind: argument.String},
	{Name: "gid", Kind: argument.Integer},
}

// Group converges one /etc/group entry.
type Group struct {
	Base
}

func NewGroup(raw map[string]any) (*Group, error) {
	gp := &GroupProvider{}
	policies := map[string]policy.Policy{
		"apply": {
			Name:      "apply",
			Default:   true,
			Signature: policy.Present("name"),
			Providers: provider.Registry{gp},
		},
		"remove": {
			Name:      "remove",
			Signature: policy.Present("name"),
			Providers: provider.Registry{gp},
		},
	}
	b, err := NewBase("Group", groupSchema, policies, raw)
	if err != nil {
		return nil, err
	}
	g := &Group{Base: b}
	if g.id == "" {
		g.id = "Group[" + g.stringField("name") + "]"
	}
	if g.policyName == "" {
		g.policyName = "apply"
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Group) Name() string { return g.stringField("name") }
func (g *Group) Gid() *int {
	if !g.Present("gid") {
		return nil
	}
	v, _ := g.value("gid").(int)
	return &v
}

func (g *Group) Validate() error { return g.validatePolicy(g) }

func (g *Group) Apply(ctx runctx.Context) (bool, error) {
	ctx = ctx.WithResource(g.id)
	prov, err := g.selectProvider(g, ctx.Platform)
	if err != nil {
		return false, err
	}
	return prov.Apply(ctx, g)
}

func (g *Group) Serialize() map[string]any {
	out := map[string]any{"name": g.Name()}
	if id := g.Gid(); id != nil {
		out["gid"] = *id
	}
	if g.policyName != "apply" {
		out["policy"] = g.policyName
	}
	return out
}

// GroupProvider implements apply/remove for Group via groupadd/groupmod/groupdel.
type GroupProvider struct{}

func (p *GroupProvider) Name() string { return "group" }

func (p *GroupProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*Group)
	return ok && (policyName == "apply" || policyName == "remove")
}

func (p *GroupProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	g := res.(*Group)
	existing, err := ctx.Platform.GetGrnam(g.Name())
	exists := err == nil

	if g.Policy() == "remove" {
		if !exists {
			return false, nil
		}
		_, cmdErr := change.ShellCommand(ctx, change.ShellCommandSpec{Command: []string{"groupdel", g.Name()}})
		return true, ctx.RaiseOrLog(cmdErr)
	}

	if !exists {
		argv := []string{"groupadd"}
		if id := g.Gid(); id != nil {
			argv = append(argv, "-g", strconv.Itoa(*id))
		}
		argv = append(argv, g.Name())
		_, cmdErr := change.ShellCommand(ctx, change.ShellCommandSpec{Command: argv})
		return true, ctx.RaiseOrLog(cmdErr)
	}

	if id := g.Gid(); id != nil && *id != existing.Gid {
		_, cmdErr := change.ShellCommand(ctx, change.ShellCommandSpec{
			Command: []string{"groupmod", "-g", strconv.Itoa(*id), g.Name()},
		})
		return true, ctx.RaiseOrLog(cmdErr)
	}

	return false, nil
}
