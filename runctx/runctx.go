// Package runctx carries the cross-cutting state every Change and Provider
// needs: the platform adapter, the simulate flag, and a logger. It exists
// so that platform, change and provider can all depend on one small leaf
// package instead of each other.
package runctx

import (
	"go.uber.org/zap"

	"github.com/fuselage-sh/fuselage/asset"
	"github.com/fuselage-sh/fuselage/log"
	"github.com/fuselage-sh/fuselage/platform"
)

// Context is threaded through every Change.Apply and Provider.Apply call.
type Context struct {
	Platform platform.Platform
	Simulate bool
	Logger   *log.Logger
	// Assets resolves File-kind arguments carrying a "bundle://" reference
	// back to their bytes. Nil when a bundle carries no such references.
	Assets asset.Store
	// Resource is the id of the resource currently being applied, attached
	// to every log record emitted through this Context.
	Resource string
}

// WithResource returns a copy of ctx scoped to a different resource id,
// the way the runner re-scopes a Context per resource in its apply loop.
func (c Context) WithResource(id string) Context {
	c.Resource = id
	return c
}

// RaiseOrLog implements the simulate-mode contract from spec §5/§7: under
// simulate, an error that depends on system state an operator might still
// fix before the real apply (missing user, missing path, missing binary)
// is logged and swallowed; otherwise it propagates. Structural errors must
// never be routed through RaiseOrLog — callers raise those directly.
func (c Context) RaiseOrLog(err error) error {
	if err == nil {
		return nil
	}
	if c.Simulate {
		if c.Logger != nil {
			c.Logger.Warn("simulate: would fail", zap.String("resource", c.Resource), zap.Error(err))
		}
		return nil
	}
	return err
}
