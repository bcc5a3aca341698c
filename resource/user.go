package resource

import (
	"strconv"
	"strings"

	"github.com/fuselage-sh/fuselage/argument"
	"github.com/fuselage-sh/fuselage/change"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/policy"
	"github.com/fuselage-sh/fuselage/provider"
	"github.com/fuselage-sh/fuselage/runctx"
)

var userSchema = []argument.Spec{
	{Name: "name", Kind: argument.String},
	{Name: "uid", Kind: argument.Integer},
	{Name: "gid", Kind: argument.Integer},
	{Name: "home", Kind: argument.FullPath},
	{Name: "shell", Kind: argument.FullPath},
	{Name: "groups", Kind: argument.List},
}

// User converges one /etc/passwd entry.
type User struct {
	Base
}

func NewUser(raw map[string]any) (*User, error) {
	up := &UserProvider{}
	policies := map[string]policy.Policy{
		"apply": {
			Name:      "apply",
			Default:   true,
			Signature: policy.Present("name"),
			Providers: provider.Registry{up},
		},
		"remove": {
			Name:      "remove",
			Signature: policy.Present("name"),
			Providers: provider.Registry{up},
		},
	}
	b, err := NewBase("User", userSchema, policies, raw)
	if err != nil {
		return nil, err
	}
	u := &User{Base: b}
	if u.id == "" {
		u.id = "User[" + u.stringField("name") + "]"
	}
	if u.policyName == "" {
		u.policyName = "apply"
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *User) Name() string  { return u.stringField("name") }
func (u *User) Home() string  { return u.stringField("home") }
func (u *User) Shell() string { return u.stringField("shell") }
func (u *User) Uid() *int {
	if !u.Present("uid") {
		return nil
	}
	v, _ := u.value("uid").(int)
	return &v
}
func (u *User) Gid() *int {
	if !u.Present("gid") {
		return nil
	}
	v, _ := u.value("gid").(int)
	return &v
}
func (u *User) Groups() []string {
	raw, _ := u.value("groups").([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func (u *User) Validate() error { return u.validatePolicy(u) }

func (u *User) Apply(ctx runctx.Context) (bool, error) {
	ctx = ctx.WithResource(u.id)
	prov, err := u.selectProvider(u, ctx.Platform)
	if err != nil {
		return false, err
	}
	return prov.Apply(ctx, u)
}

func (u *User) Serialize() map[string]any {
	out := map[string]any{"name": u.Name()}
	if id := u.Uid(); id != nil {
		out["uid"] = *id
	}
	if id := u.Gid(); id != nil {
		out["gid"] = *id
	}
	if u.Present("home") {
		out["home"] = u.Home()
	}
	if u.Present("shell") {
		out["shell"] = u.Shell()
	}
	if u.Present("groups") {
		out["groups"] = u.Groups()
	}
	if u.policyName != "apply" {
		out["policy"] = u.policyName
	}
	return out
}

// UserProvider implements apply/remove for User via useradd/usermod/userdel.
type UserProvider struct{}

func (p *UserProvider) Name() string { return "user" }

func (p *UserProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*User)
	return ok && (policyName == "apply" || policyName == "remove")
}

func (p *UserProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	u := res.(*User)
	_, err := ctx.Platform.GetPwnam(u.Name())
	exists := err == nil

	if u.Policy() == "remove" {
		if !exists {
			return false, nil
		}
		_, cmdErr := change.ShellCommand(ctx, change.ShellCommandSpec{
			Command: []string{"userdel", u.Name()},
		})
		return true, ctx.RaiseOrLog(cmdErr)
	}

	argv, needed := userArgs(u, exists)
	if !needed {
		return false, nil
	}

	_, cmdErr := change.ShellCommand(ctx, change.ShellCommandSpec{Command: argv})
	return true, ctx.RaiseOrLog(cmdErr)
}

func userArgs(u *User, exists bool) ([]string, bool) {
	action := "useradd"
	if exists {
		action = "usermod"
	}
	argv := []string{action}
	changed := !exists

	if id := u.Uid(); id != nil {
		argv = append(argv, "-u", strconv.Itoa(*id))
		changed = true
	}
	if id := u.Gid(); id != nil {
		argv = append(argv, "-g", strconv.Itoa(*id))
		changed = true
	}
	if u.Present("home") {
		argv = append(argv, "-d", u.Home())
		changed = true
	}
	if u.Present("shell") {
		argv = append(argv, "-s", u.Shell())
		changed = true
	}
	if len(u.Groups()) > 0 {
		argv = append(argv, "-G", strings.Join(u.Groups(), ","))
		changed = true
	}
	argv = append(argv, u.Name())

	if !changed {
		return nil, false
	}
	return argv, true
}
