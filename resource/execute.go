package resource

import (
	"crypto/sha1" //nolint:gosec // id derivation, not a security boundary
	"encoding/hex"
	"strings"

	"github.com/fuselage-sh/fuselage/argument"
	"github.com/fuselage-sh/fuselage/change"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/policy"
	"github.com/fuselage-sh/fuselage/provider"
	"github.com/fuselage-sh/fuselage/runctx"
)

var executeSchema = []argument.Spec{
	{Name: "command", Kind: argument.String},
	{Name: "cwd", Kind: argument.FullPath},
	{Name: "user", Kind: argument.String},
	{Name: "group", Kind: argument.String},
	{Name: "env", Kind: argument.Dict},
	{Name: "umask", Kind: argument.Octal},
	{Name: "expected", Kind: argument.Integer, Default: func(argument.Context) any { return 0 }},
	{Name: "unless", Kind: argument.String},
	{Name: "onlyif", Kind: argument.String},
}

// Execute runs a shell command, skippable via `unless`/`onlyif` guards.
// Its single policy, `execute`, is always conforming unless both guards
// are given (which is NAND).
type Execute struct {
	Base
}

func NewExecute(raw map[string]any) (*Execute, error) {
	ep := &ExecuteProvider{}
	policies := map[string]policy.Policy{
		"execute": {
			Name:      "execute",
			Default:   true,
			Signature: policy.Nand{policy.Present("unless"), policy.Present("onlyif")},
			Providers: provider.Registry{ep},
		},
	}
	b, err := NewBase("Execute", executeSchema, policies, raw)
	if err != nil {
		return nil, err
	}
	e := &Execute{Base: b}
	if e.id == "" {
		e.id = "Execute[" + normalizeCommandID(e.stringField("command")) + "]"
	}
	if e.policyName == "" {
		e.policyName = "execute"
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// normalizeCommandID derives a stable id from command text: a resource
// family whose identity is the command itself, not a declared name.
// Identical commands in one bundle collide on purpose (spec's duplicate-
// id behaviour for Execute resources).
func normalizeCommandID(command string) string {
	trimmed := strings.Join(strings.Fields(command), " ")
	if len(trimmed) <= 40 {
		return trimmed
	}
	sum := sha1.Sum([]byte(trimmed)) //nolint:gosec
	return trimmed[:40] + "-" + hex.EncodeToString(sum[:])[:8]
}

func (e *Execute) Command() string { return e.stringField("command") }
func (e *Execute) Cwd() string     { return e.stringField("cwd") }
func (e *Execute) User() string    { return e.stringField("user") }
func (e *Execute) Group() string   { return e.stringField("group") }
func (e *Execute) Unless() string  { return e.stringField("unless") }
func (e *Execute) Onlyif() string  { return e.stringField("onlyif") }
func (e *Execute) Expected() int {
	v, _ := e.value("expected").(int)
	return v
}
func (e *Execute) Umask() *int {
	if !e.Present("umask") {
		return nil
	}
	v, _ := e.value("umask").(int)
	return &v
}
func (e *Execute) Env() map[string]string {
	raw, _ := e.value("env").(map[string]any)
	out := map[string]string{}
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func (e *Execute) Validate() error { return e.validatePolicy(e) }

func (e *Execute) Apply(ctx runctx.Context) (bool, error) {
	ctx = ctx.WithResource(e.id)
	prov, err := e.selectProvider(e, ctx.Platform)
	if err != nil {
		return false, err
	}
	return prov.Apply(ctx, e)
}

func (e *Execute) Serialize() map[string]any {
	out := map[string]any{"command": e.Command()}
	if e.Present("cwd") {
		out["cwd"] = e.Cwd()
	}
	if e.Present("user") {
		out["user"] = e.User()
	}
	if e.Present("group") {
		out["group"] = e.Group()
	}
	if e.Present("env") {
		out["env"] = e.Env()
	}
	if u := e.Umask(); u != nil {
		out["umask"] = *u
	}
	if e.Present("expected") {
		out["expected"] = e.Expected()
	}
	if e.Present("unless") {
		out["unless"] = e.Unless()
	}
	if e.Present("onlyif") {
		out["onlyif"] = e.Onlyif()
	}
	return out
}

// ExecuteProvider is the sole mechanism for the `execute` policy.
type ExecuteProvider struct{}

func (p *ExecuteProvider) Name() string { return "execute" }

func (p *ExecuteProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*Execute)
	return ok && policyName == "execute"
}

func (p *ExecuteProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	e := res.(*Execute)

	if e.Onlyif() != "" && !guardSucceeds(ctx, e.Onlyif()) {
		return false, nil
	}
	if e.Unless() != "" && guardSucceeds(ctx, e.Unless()) {
		return false, nil
	}

	changed, err := change.ShellCommand(ctx, change.ShellCommandSpec{
		Shell:    e.Command(),
		Cwd:      e.Cwd(),
		Env:      e.Env(),
		User:     e.User(),
		Group:    e.Group(),
		Umask:    e.Umask(),
		Expected: e.Expected(),
	})
	return changed, ctx.RaiseOrLog(err)
}

// guardSucceeds runs a shell guard command and reports whether it
// returned 0, swallowing any non-command error as "guard failed" rather
// than surfacing it to the caller.
func guardSucceeds(ctx runctx.Context, shell string) bool {
	guardCtx := ctx
	guardCtx.Simulate = false
	_, err := change.ShellCommand(guardCtx, change.ShellCommandSpec{Shell: shell, Expected: 0})
	return err == nil
}
