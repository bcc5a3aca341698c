// Package policy defines the assertion calculus that governs which fields
// a resource declaration must (or must not) carry, and which provider
// mechanism converges it.
package policy

import (
	"fmt"
	"strings"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/provider"
)

// Conforming is the minimal surface a resource must expose for policy
// validation: whether a named argument was declared. Resource never
// needs to be imported here; this keeps policy and resource decoupled in
// the direction that matters (policy doesn't know about resource, but
// resource imports policy for its Providers field).
type Conforming interface {
	Present(name string) bool
}

// Assertion is one node of the precondition calculus: Present, Absent,
// And, Or, Xor or Nand over named resource fields.
type Assertion interface {
	// Test reports whether r satisfies the assertion.
	Test(r Conforming) bool
	// Describe renders a human-readable trace for validation errors.
	Describe(r Conforming) string
}

// Present asserts that the named field was declared on the resource.
type Present string

func (a Present) Test(r Conforming) bool { return r.Present(string(a)) }
func (a Present) Describe(r Conforming) string {
	return fmt.Sprintf("present(%s)=%v", string(a), a.Test(r))
}

// Absent asserts that the named field was NOT declared on the resource.
type Absent string

func (a Absent) Test(r Conforming) bool { return !r.Present(string(a)) }
func (a Absent) Describe(r Conforming) string {
	return fmt.Sprintf("absent(%s)=%v", string(a), a.Test(r))
}

// And is satisfied when every child assertion is satisfied.
type And []Assertion

func (a And) Test(r Conforming) bool {
	for _, c := range a {
		if !c.Test(r) {
			return false
		}
	}
	return true
}
func (a And) Describe(r Conforming) string { return describeGroup("and", a, r) }

// Or is satisfied when at least one child assertion is satisfied.
type Or []Assertion

func (a Or) Test(r Conforming) bool {
	for _, c := range a {
		if c.Test(r) {
			return true
		}
	}
	return false
}
func (a Or) Describe(r Conforming) string { return describeGroup("or", a, r) }

// Xor is satisfied when exactly one child assertion is satisfied.
type Xor []Assertion

func (a Xor) Test(r Conforming) bool {
	n := 0
	for _, c := range a {
		if c.Test(r) {
			n++
		}
	}
	return n == 1
}
func (a Xor) Describe(r Conforming) string { return describeGroup("xor", a, r) }

// Nand is satisfied when at most one child assertion is satisfied (not
// "not all true" — two true out of three still fails).
type Nand []Assertion

func (a Nand) Test(r Conforming) bool {
	n := 0
	for _, c := range a {
		if c.Test(r) {
			n++
		}
	}
	return n <= 1
}
func (a Nand) Describe(r Conforming) string { return describeGroup("nand", a, r) }

func describeGroup(op string, children []Assertion, r Conforming) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.Describe(r)
	}
	return fmt.Sprintf("%s(%s)", op, strings.Join(parts, ", "))
}

// Policy names a resource state and the precondition its declaration must
// satisfy, plus the providers able to enact it.
type Policy struct {
	Name      string
	Default   bool
	Signature Assertion
	Providers provider.Registry
}

// Validate reports a *errors.Error of KindNonConformingPolicy if r does
// not satisfy p's Signature.
func (p Policy) Validate(r Conforming) error {
	if p.Signature == nil {
		return nil
	}
	if p.Signature.Test(r) {
		return nil
	}
	return fuserrors.New(fuserrors.KindNonConformingPolicy, "",
		fmt.Sprintf("policy %q requires %s", p.Name, p.Signature.Describe(r)))
}

// GetProvider selects the single provider in p.Providers claiming res
// under p.Name and plat, or an error (KindNoSuitableProviders /
// KindTooManyProviders) if zero or more than one do.
func (p Policy) GetProvider(res any, plat platform.Platform) (provider.Provider, error) {
	return p.Providers.Select(p.Name, res, plat)
}
