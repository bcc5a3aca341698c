package runner

import (
	"embed"

	"github.com/fuselage-sh/fuselage/bundle"
	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
)

// ResourcesLoader retrieves the packaged bundle blob a Bundled runner
// applies. It returns ok=false when the blob is absent, the condition
// spec §4.I requires to surface as a ParseError.
type ResourcesLoader func() (data []byte, ok bool)

// EmbedLoader adapts a go:embed'd filesystem to a ResourcesLoader: the
// shape cmd/fuselage-agent uses to bake `resources.json` into the binary
// at build time alongside the rest of the code.
func EmbedLoader(fsys embed.FS, name string) ResourcesLoader {
	return func() ([]byte, bool) {
		data, err := fsys.ReadFile(name)
		if err != nil {
			return nil, false
		}
		return data, true
	}
}

// Bundled is a Runner whose bundle comes from a packaged blob rather
// than a file path an operator supplies, spec's "bundled runner" (§4.I).
type Bundled struct {
	*Runner
}

// NewBundled loads resources.json via load and constructs a Runner over
// it. A missing blob is a ParseError, matching the source's exact
// message ("Bundle is missing resources.json").
func NewBundled(plat platform.Platform, opts Options, load ResourcesLoader) (*Bundled, error) {
	data, ok := load()
	if !ok {
		return nil, fuserrors.New(fuserrors.KindParse, "", "Bundle is missing resources.json")
	}

	b, err := bundle.Loads(data)
	if err != nil {
		return nil, err
	}

	r, err := New(b, plat, opts)
	if err != nil {
		return nil, err
	}
	return &Bundled{Runner: r}, nil
}
