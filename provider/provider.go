// Package provider defines the Provider interface that supplies the
// mechanism behind a policy's behavior. Provider never imports policy or
// resource: a concrete provider lives in the resource package and type
// -asserts its res argument back to the concrete type it knows how to
// handle, keeping this package a leaf the rest of the dependency graph
// can point at from either side.
package provider

import (
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/runctx"
)

// Provider implements one mechanism for converging a resource to its
// declared state under a particular policy.
type Provider interface {
	// Name identifies the provider for logging and `inspect` output.
	Name() string

	// IsValid reports whether this provider can handle res under the
	// named policy, probing plat for the discriminator some providers
	// need (e.g. which package manager binary is on PATH). Exactly one
	// registered provider must return true for a given (policyName, res)
	// pair; zero or more than one is an error the caller must surface
	// (errors.KindNoSuitableProviders / errors.KindTooManyProviders).
	IsValid(policyName string, res any, plat platform.Platform) bool

	// Apply converges res to its declared state. changed reports whether
	// any underlying system state was actually modified; err is raised
	// or swallowed by the caller via runctx.Context.RaiseOrLog.
	Apply(ctx runctx.Context, res any) (changed bool, err error)
}

// Registry holds the providers available for one policy's Providers
// field. It is a thin ordered slice wrapper so resource constructors can
// build it with a plain literal while GetProvider below stays in one
// place.
type Registry []Provider

// Select returns the single provider in r that claims policyName/res
// under plat, or an error if zero or more than one does. Called at
// apply-time, once a Platform is available — provider dispatch for
// host-dependent providers (package manager, init system) cannot be
// resolved any earlier than this.
func (r Registry) Select(policyName string, res any, plat platform.Platform) (Provider, error) {
	var match Provider
	count := 0
	for _, p := range r {
		if p.IsValid(policyName, res, plat) {
			match = p
			count++
		}
	}
	switch count {
	case 0:
		return nil, errNoSuitable(policyName)
	case 1:
		return match, nil
	default:
		return nil, errTooMany(policyName, count)
	}
}
