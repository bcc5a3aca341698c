package resource

import (
	"github.com/fuselage-sh/fuselage/argument"
	"github.com/fuselage-sh/fuselage/change"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/policy"
	"github.com/fuselage-sh/fuselage/provider"
	"github.com/fuselage-sh/fuselage/runctx"
)

var serviceSchema = []argument.Spec{
	{Name: "name", Kind: argument.String},
	{Name: "enable", Kind: argument.Boolean},
}

// Service converges a host init-system unit: running/stopped, and
// optionally enabled at boot.
type Service struct {
	Base
}

func NewService(raw map[string]any) (*Service, error) {
	sp := &SystemdProvider{}
	yp := &SysvProvider{}
	registry := provider.Registry{sp, yp}
	policies := map[string]policy.Policy{
		"running": {
			Name:      "running",
			Default:   true,
			Signature: policy.Present("name"),
			Providers: registry,
		},
		"stopped": {
			Name:      "stopped",
			Signature: policy.Present("name"),
			Providers: registry,
		},
		"restart": {
			Name:      "restart",
			Signature: policy.Present("name"),
			Providers: registry,
		},
	}
	b, err := NewBase("Service", serviceSchema, policies, raw)
	if err != nil {
		return nil, err
	}
	s := &Service{Base: b}
	if s.id == "" {
		s.id = "Service[" + s.stringField("name") + "]"
	}
	if s.policyName == "" {
		s.policyName = "running"
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) Name() string { return s.stringField("name") }
func (s *Service) Enable() bool {
	v, _ := s.value("enable").(bool)
	return v
}

func (s *Service) Validate() error { return s.validatePolicy(s) }

func (s *Service) Apply(ctx runctx.Context) (bool, error) {
	ctx = ctx.WithResource(s.id)
	prov, err := s.selectProvider(s, ctx.Platform)
	if err != nil {
		return false, err
	}
	return prov.Apply(ctx, s)
}

func (s *Service) Serialize() map[string]any {
	out := map[string]any{"name": s.Name()}
	if s.Present("enable") {
		out["enable"] = s.Enable()
	}
	if s.policyName != "running" {
		out["policy"] = s.policyName
	}
	return out
}

// SystemdProvider targets hosts running systemd, isvalid when
// /run/systemd/system is a directory on the platform adapter.
type SystemdProvider struct{}

func (p *SystemdProvider) Name() string { return "systemd" }

func (p *SystemdProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*Service)
	return ok && isServicePolicy(policyName) && plat.IsDir("/run/systemd/system")
}

func (p *SystemdProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	svc := res.(*Service)

	var argv []string
	switch svc.Policy() {
	case "stopped":
		argv = []string{"systemctl", "stop", svc.Name()}
	case "restart":
		argv = []string{"systemctl", "restart", svc.Name()}
	default:
		argv = []string{"systemctl", "start", svc.Name()}
	}
	_, err := change.ShellCommand(ctx, change.ShellCommandSpec{Command: argv})
	if raised := ctx.RaiseOrLog(err); raised != nil {
		return false, raised
	}

	if svc.Present("enable") {
		action := "disable"
		if svc.Enable() {
			action = "enable"
		}
		_, enErr := change.ShellCommand(ctx, change.ShellCommandSpec{
			Command: []string{"systemctl", action, svc.Name()},
		})
		if raised := ctx.RaiseOrLog(enErr); raised != nil {
			return false, raised
		}
	}
	return true, nil
}

// SysvProvider is the fallback for hosts without systemd, driving the
// /etc/init.d script directly.
type SysvProvider struct{}

func (p *SysvProvider) Name() string { return "sysv" }

func (p *SysvProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*Service)
	return ok && isServicePolicy(policyName) && !plat.IsDir("/run/systemd/system")
}

func (p *SysvProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	svc := res.(*Service)

	action := "start"
	switch svc.Policy() {
	case "stopped":
		action = "stop"
	case "restart":
		action = "restart"
	}
	_, err := change.ShellCommand(ctx, change.ShellCommandSpec{
		Command: []string{"/etc/init.d/" + svc.Name(), action},
	})
	return true, ctx.RaiseOrLog(err)
}

func isServicePolicy(policyName string) bool {
	switch policyName {
	case "running", "stopped", "restart":
		return true
	default:
		return false
	}
}
