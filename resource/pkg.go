package resource

import (
	"github.com/fuselage-sh/fuselage/argument"
	"github.com/fuselage-sh/fuselage/change"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/policy"
	"github.com/fuselage-sh/fuselage/provider"
	"github.com/fuselage-sh/fuselage/runctx"
)

var packageSchema = []argument.Spec{
	{Name: "name", Kind: argument.String},
	{Name: "version", Kind: argument.String},
}

// Package converges an installed system package via the host's package
// manager. Two providers are registered for every policy; exactly one
// must claim the resource at apply time (AptProvider when apt-get is
// present, YumProvider when yum is), exercising the four-way dispatch's
// TooManyProviders/NoSuitableProviders paths directly.
type Package struct {
	Base
}

func NewPackage(raw map[string]any) (*Package, error) {
	ap := &AptProvider{}
	yp := &YumProvider{}
	registry := provider.Registry{ap, yp}
	policies := map[string]policy.Policy{
		"installed": {
			Name:      "installed",
			Default:   true,
			Signature: policy.Present("name"),
			Providers: registry,
		},
		"removed": {
			Name:      "removed",
			Signature: policy.Present("name"),
			Providers: registry,
		},
		"latest": {
			Name:      "latest",
			Signature: policy.Present("name"),
			Providers: registry,
		},
	}
	b, err := NewBase("Package", packageSchema, policies, raw)
	if err != nil {
		return nil, err
	}
	p := &Package{Base: b}
	if p.id == "" {
		p.id = "Package[" + p.stringField("name") + "]"
	}
	if p.policyName == "" {
		p.policyName = "installed"
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Package) Name() string    { return p.stringField("name") }
func (p *Package) Version() string { return p.stringField("version") }

func (p *Package) Validate() error { return p.validatePolicy(p) }

func (p *Package) Apply(ctx runctx.Context) (bool, error) {
	ctx = ctx.WithResource(p.id)
	prov, err := p.selectProvider(p, ctx.Platform)
	if err != nil {
		return false, err
	}
	return prov.Apply(ctx, p)
}

func (p *Package) Serialize() map[string]any {
	out := map[string]any{"name": p.Name()}
	if p.Present("version") {
		out["version"] = p.Version()
	}
	if p.policyName != "installed" {
		out["policy"] = p.policyName
	}
	return out
}

// AptProvider targets Debian-family hosts: isvalid when /usr/bin/apt-get
// exists on the platform adapter.
type AptProvider struct{}

func (p *AptProvider) Name() string { return "apt" }

func (p *AptProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*Package)
	return ok && isPackagePolicy(policyName) && plat.Exists("/usr/bin/apt-get")
}

func (p *AptProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	pkg := res.(*Package)
	name := pkg.Name()
	if pkg.Version() != "" {
		name = name + "=" + pkg.Version()
	}

	var argv []string
	switch pkg.Policy() {
	case "removed":
		argv = []string{"apt-get", "remove", "-y", pkg.Name()}
	case "latest":
		argv = []string{"apt-get", "install", "-y", "--only-upgrade", name}
	default:
		argv = []string{"apt-get", "install", "-y", name}
	}

	_, err := change.ShellCommand(ctx, change.ShellCommandSpec{Command: argv})
	return true, ctx.RaiseOrLog(err)
}

// YumProvider targets RHEL-family hosts: isvalid when /usr/bin/yum
// exists on the platform adapter.
type YumProvider struct{}

func (p *YumProvider) Name() string { return "yum" }

func (p *YumProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*Package)
	return ok && isPackagePolicy(policyName) && plat.Exists("/usr/bin/yum")
}

func (p *YumProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	pkg := res.(*Package)
	name := pkg.Name()
	if pkg.Version() != "" {
		name = name + "-" + pkg.Version()
	}

	var argv []string
	switch pkg.Policy() {
	case "removed":
		argv = []string{"yum", "remove", "-y", pkg.Name()}
	case "latest":
		argv = []string{"yum", "update", "-y", pkg.Name()}
	default:
		argv = []string{"yum", "install", "-y", name}
	}

	_, err := change.ShellCommand(ctx, change.ShellCommandSpec{Command: argv})
	return true, ctx.RaiseOrLog(err)
}

func isPackagePolicy(policyName string) bool {
	switch policyName {
	case "installed", "removed", "latest":
		return true
	default:
		return false
	}
}
