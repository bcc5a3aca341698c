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

var mountSchema = []argument.Spec{
	{Name: "name", Kind: argument.FullPath},
	{Name: "device", Kind: argument.String},
	{Name: "fstype", Kind: argument.String},
	{Name: "options", Kind: argument.List},
	{Name: "dump", Kind: argument.Integer, Default: func(argument.Context) any { return 0 }},
	{Name: "passno", Kind: argument.Integer, Default: func(argument.Context) any { return 0 }},
}

// Mount converges one /etc/fstab entry plus the live mount state at its
// mountpoint.
type Mount struct {
	Base
}

func NewMount(raw map[string]any) (*Mount, error) {
	mp := &MountProvider{}
	policies := map[string]policy.Policy{
		"mounted": {
			Name:      "mounted",
			Default:   true,
			Signature: policy.And{policy.Present("name"), policy.Present("device")},
			Providers: provider.Registry{mp},
		},
		"unmounted": {
			Name:      "unmounted",
			Signature: policy.Present("name"),
			Providers: provider.Registry{mp},
		},
	}
	b, err := NewBase("Mount", mountSchema, policies, raw)
	if err != nil {
		return nil, err
	}
	m := &Mount{Base: b}
	if m.id == "" {
		m.id = "Mount[" + m.stringField("name") + "]"
	}
	if m.policyName == "" {
		m.policyName = "mounted"
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Mount) Name() string   { return m.stringField("name") }
func (m *Mount) Device() string { return m.stringField("device") }
func (m *Mount) Fstype() string { return m.stringField("fstype") }
func (m *Mount) Options() []string {
	raw, _ := m.value("options").([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
func (m *Mount) Dump() int   { v, _ := m.value("dump").(int); return v }
func (m *Mount) Passno() int { v, _ := m.value("passno").(int); return v }

func (m *Mount) Validate() error { return m.validatePolicy(m) }

func (m *Mount) Apply(ctx runctx.Context) (bool, error) {
	ctx = ctx.WithResource(m.id)
	prov, err := m.selectProvider(m, ctx.Platform)
	if err != nil {
		return false, err
	}
	return prov.Apply(ctx, m)
}

func (m *Mount) Serialize() map[string]any {
	out := map[string]any{"name": m.Name()}
	if m.Present("device") {
		out["device"] = m.Device()
	}
	if m.Present("fstype") {
		out["fstype"] = m.Fstype()
	}
	if m.Present("options") {
		out["options"] = m.Options()
	}
	if m.Present("dump") {
		out["dump"] = m.Dump()
	}
	if m.Present("passno") {
		out["passno"] = m.Passno()
	}
	if m.policyName != "mounted" {
		out["policy"] = m.policyName
	}
	return out
}

const fstabPath = "/etc/fstab"

// MountProvider implements mounted/unmounted by editing /etc/fstab's
// single matching-mountpoint line, via the same diff machinery
// change.EnsureContents uses elsewhere, and shelling mount/umount.
type MountProvider struct{}

func (p *MountProvider) Name() string { return "mount" }

func (p *MountProvider) IsValid(policyName string, res any, plat platform.Platform) bool {
	_, ok := res.(*Mount)
	return ok && (policyName == "mounted" || policyName == "unmounted")
}

func (p *MountProvider) Apply(ctx runctx.Context, res any) (bool, error) {
	m := res.(*Mount)

	current, err := ctx.Platform.Get(fstabPath)
	if err != nil {
		current = []byte{}
	}
	lines := splitLines(string(current))

	var newLines []string
	fstabChanged := false

	switch m.Policy() {
	case "unmounted":
		newLines, fstabChanged = removeFstabLine(lines, m.Name())
	default:
		newLines, fstabChanged = ensureFstabLine(lines, m)
	}

	if fstabChanged {
		if ctx.Simulate {
			return true, nil
		}
		if putErr := ctx.Platform.Put(fstabPath, []byte(strings.Join(newLines, "\n")+"\n"), 0644); putErr != nil {
			return false, ctx.RaiseOrLog(putErr)
		}
	}

	var argv []string
	if m.Policy() == "unmounted" {
		argv = []string{"umount", m.Name()}
	} else {
		argv = []string{"mount", m.Name()}
	}

	if ctx.Simulate {
		return fstabChanged, nil
	}
	_, cmdErr := change.ShellCommand(ctx, change.ShellCommandSpec{Command: argv})
	return true, ctx.RaiseOrLog(cmdErr)
}

func fstabFields(m *Mount) []string {
	options := strings.Join(m.Options(), ",")
	if options == "" {
		options = "defaults"
	}
	fstype := m.Fstype()
	if fstype == "" {
		fstype = "auto"
	}
	return []string{
		m.Device(), m.Name(), fstype, options,
		strconv.Itoa(m.Dump()), strconv.Itoa(m.Passno()),
	}
}

func ensureFstabLine(lines []string, m *Mount) ([]string, bool) {
	desired := strings.Join(fstabFields(m), "\t")
	for i, l := range lines {
		if fstabMountpoint(l) == m.Name() {
			if l == desired {
				return lines, false
			}
			out := append([]string(nil), lines...)
			out[i] = desired
			return out, true
		}
	}
	return append(append([]string(nil), lines...), desired), true
}

func removeFstabLine(lines []string, mountpoint string) ([]string, bool) {
	out := make([]string, 0, len(lines))
	removed := false
	for _, l := range lines {
		if fstabMountpoint(l) == mountpoint {
			removed = true
			continue
		}
		out = append(out, l)
	}
	return out, removed
}

func fstabMountpoint(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 2 || strings.HasPrefix(strings.TrimSpace(line), "#") {
		return ""
	}
	return fields[1]
}
