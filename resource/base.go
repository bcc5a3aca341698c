// Package resource implements the concrete resource families
// (File, Directory, Symlink, LineInFile, Patch, Execute, User, Group,
// Package, Service, Mount, Scm) and their providers. It is the one
// package allowed to depend on both policy and provider, since each
// concrete provider type-asserts the `any` value it receives back to the
// concrete resource struct it knows how to handle.
package resource

import (
	"fmt"

	"github.com/fuselage-sh/fuselage/argument"
	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/policy"
	"github.com/fuselage-sh/fuselage/provider"
	"github.com/fuselage-sh/fuselage/runctx"
)

// Resource is the uniform surface the bundle and runner drive: every
// concrete type embeds Base and implements Apply.
type Resource interface {
	policy.Conforming

	// ID is this resource's stable, bundle-unique identifier.
	ID() string
	// TypeName names the resource family for bundle serialization
	// ("File", "Execute", ...).
	TypeName() string
	// Policy returns the currently selected policy's name.
	Policy() string
	// Watches returns the ids of resources this one observes.
	Watches() []argument.PolicyTrigger
	// Changes returns the external paths watched for hash drift.
	Changes() []string
	// Observers returns the ids registered as reverse-watchers, mutated
	// by bundle.bind().
	Observers() []string
	AddObserver(id string)

	// Implicit reports whether this resource was synthesised by
	// bundle.add() from a `changes` entry (excluded from serialise
	// output).
	Implicit() bool

	// Validate checks the active policy's precondition at construction
	// time, raising NonConformingPolicy eagerly. Provider dispatch
	// (NoSuitableProviders / TooManyProviders) happens at Apply, once a
	// Platform is available to probe.
	Validate() error

	// Apply converges the resource via its selected provider.
	Apply(ctx runctx.Context) (bool, error)

	// Serialize renders the resource's user-supplied (or defaulted,
	// where the schema marks it serialised) fields for bundle.dumps.
	Serialize() map[string]any
}

// field holds one argument's coerced value plus whether it was
// user-supplied, the schema-table-per-resource-type design spec.md's
// design notes call for.
type field struct {
	value   any
	present bool
}

// Base implements the bookkeeping every concrete resource type shares:
// id, policy selection, watch/observer graph, and the argument value
// table. Concrete types embed Base and add their own typed accessors
// over its field table.
type Base struct {
	id       string
	typeName string
	fields   map[string]field
	schema   []argument.Spec

	policyName string
	policies   map[string]policy.Policy

	watches   []argument.PolicyTrigger
	changes   []string
	observers []string
	implicit  bool
}

// NewBase constructs the bookkeeping for a concrete resource type. raw
// holds the caller-supplied field values (already decoded from
// JSON/YAML, or set programmatically); schema is the resource type's
// argument table; policies maps policy name to its Policy definition.
func NewBase(typeName string, schema []argument.Spec, policies map[string]policy.Policy, raw map[string]any) (Base, error) {
	b := Base{
		typeName: typeName,
		fields:   map[string]field{},
		schema:   schema,
		policies: policies,
	}

	for _, s := range schema {
		v, ok := raw[s.Name]
		if !ok {
			b.fields[s.Name] = field{present: false}
			continue
		}
		coerced, err := argument.Coerce(s.Name, s.Kind, v)
		if err != nil {
			return Base{}, fuserrors.Wrapf(fuserrors.KindParse, "", err, "%s: %v", typeName, err)
		}
		b.fields[s.Name] = field{value: coerced, present: true}
	}

	if id, ok := raw["id"].(string); ok && id != "" {
		b.id = id
	}

	if pn, ok := raw["policy"].(string); ok && pn != "" {
		b.policyName = pn
	} else {
		for name, p := range policies {
			if p.Default {
				b.policyName = name
				break
			}
		}
	}

	if w, ok := raw["watches"]; ok {
		coerced, err := argument.Coerce("watches", argument.Subscription, w)
		if err != nil {
			return Base{}, fuserrors.Wrap(fuserrors.KindParse, "", err)
		}
		b.watches = coerced.([]argument.PolicyTrigger)
	}

	if c, ok := raw["changes"]; ok {
		coerced, err := argument.Coerce("changes", argument.List, c)
		if err != nil {
			return Base{}, fuserrors.Wrap(fuserrors.KindParse, "", err)
		}
		for _, item := range coerced.([]any) {
			if s, ok := item.(string); ok {
				b.changes = append(b.changes, s)
			}
		}
	}

	return b, nil
}

// Present implements policy.Conforming.
func (b *Base) Present(name string) bool { return b.fields[name].present }

// Get returns a field's coerced value and whether it was user-supplied,
// implementing argument.Context for Default functions.
func (b *Base) Get(name string) (any, bool) {
	f, ok := b.fields[name]
	return f.value, ok && f.present
}

// value returns a field's resolved value: the stored value if present,
// else the schema's Default applied to b, else nil.
func (b *Base) value(name string) any {
	f := b.fields[name]
	if f.present {
		return f.value
	}
	for _, s := range b.schema {
		if s.Name == name && s.Default != nil {
			return s.Default(b)
		}
	}
	return nil
}

func (b *Base) stringField(name string) string {
	v, _ := b.value(name).(string)
	return v
}

func (b *Base) ID() string       { return b.id }
func (b *Base) TypeName() string { return b.typeName }
func (b *Base) Policy() string   { return b.policyName }

func (b *Base) Watches() []argument.PolicyTrigger { return b.watches }
func (b *Base) Changes() []string                 { return b.changes }
func (b *Base) Observers() []string               { return b.observers }
func (b *Base) AddObserver(id string)             { b.observers = append(b.observers, id) }
func (b *Base) Implicit() bool                    { return b.implicit }

// activePolicy resolves the Policy value named by b.policyName.
func (b *Base) activePolicy() (policy.Policy, error) {
	p, ok := b.policies[b.policyName]
	if !ok {
		return policy.Policy{}, fuserrors.New(fuserrors.KindNonConformingPolicy, b.id,
			fmt.Sprintf("unknown policy %q for %s", b.policyName, b.typeName))
	}
	return p, nil
}

// validatePolicy runs the active policy's precondition at construction
// time, the "eager" half of validation spec.md calls for; conc is the
// concrete resource value (not b) so policy assertions see the full
// typed struct's Present().
func (b *Base) validatePolicy(conc policy.Conforming) error {
	p, err := b.activePolicy()
	if err != nil {
		return err
	}
	if err := p.Validate(conc); err != nil {
		if fe, ok := err.(*fuserrors.Error); ok {
			fe.Resource = b.id
		}
		return err
	}
	return nil
}

// selectProvider resolves the active policy's provider against plat,
// the host-dependent half of dispatch that can only happen once a
// Platform is available (apply-time, per spec's control flow: Policy
// selection -> Provider instantiation -> Provider.apply()).
func (b *Base) selectProvider(res any, plat platform.Platform) (provider.Provider, error) {
	p, err := b.activePolicy()
	if err != nil {
		return nil, err
	}
	return p.GetProvider(res, plat)
}
