// Package bundle implements the ordered, by-id-indexed collection of
// resources that a Runner applies, mirroring the teacher's dataset/client
// shape: one container type owning both an insertion-ordered list and a
// lookup index, with a versioned JSON wire format.
package bundle

import (
	"crypto/sha1" //nolint:gosec // drift detection, not a security boundary
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/resource"
	"github.com/fuselage-sh/fuselage/runctx"
)

// wireVersion is the only serialisation version this implementation reads
// or writes; a `version` field greater than this is rejected outright.
const wireVersion = 1

// Runner is the subset of runner.Runner that Bundle.Apply drives. The
// per-resource state machine (watch/trigger skip, unconditional trigger
// clear, observer trigger propagation) belongs to the runner, since it
// owns the EventState; Bundle only sequences resources and tracks
// watched-path drift that no provider reports on its own.
type Runner interface {
	Context() runctx.Context
	NoChangesOK() bool
	ApplyResource(r resource.Resource) (bool, error)
	FireObservers(r resource.Resource) error
}

// Bundle is the ordered, indexed collection of resources a Runner applies.
type Bundle struct {
	id        string
	ordered   []resource.Resource
	index     map[string]resource.Resource
	observers map[string]bool // ids already appended to the ordered list; bind resolves targets through index, not this set
}

// New constructs an empty Bundle with a fresh id, used by the runner to
// tag every log record emitted for this run (log.Meta.BundleID).
func New() *Bundle {
	return &Bundle{
		id:        uuid.NewString(),
		index:     map[string]resource.Resource{},
		observers: map[string]bool{},
	}
}

// ID returns the bundle's generated identity.
func (b *Bundle) ID() string { return b.id }

// Resources returns the bundle's contents in apply order.
func (b *Bundle) Resources() []resource.Resource { return b.ordered }

// Get returns the resource registered under id, if any.
func (b *Bundle) Get(id string) (resource.Resource, bool) {
	r, ok := b.index[id]
	return r, ok
}

// Add appends r to the bundle: rejects a duplicate id, synthesises an
// implicit watched File for each of r's watched external paths, binds r's
// subscriptions against resources already in the bundle, then appends.
func (b *Bundle) Add(r resource.Resource) error {
	if _, exists := b.index[r.ID()]; exists {
		return fuserrors.New(fuserrors.KindParse, r.ID(), fmt.Sprintf("duplicate resource id %q", r.ID()))
	}

	for _, path := range r.Changes() {
		implicitID := "File[" + path + "]"
		if _, exists := b.index[implicitID]; !exists {
			wf, err := resource.NewImplicitWatchedFile(path)
			if err != nil {
				return err
			}
			b.append(wf)
		}
	}

	if err := b.bind(r); err != nil {
		return err
	}

	b.append(r)
	return nil
}

func (b *Bundle) append(r resource.Resource) {
	b.ordered = append(b.ordered, r)
	b.index[r.ID()] = r
	b.observers[r.ID()] = true
}

// bind resolves each of r's watch triggers against the bundle's by-id
// index. A target must already be present (bundle ordering rule: the
// watched resource must precede its watcher); an absent target or a
// self-reference is a BindingError.
func (b *Bundle) bind(r resource.Resource) error {
	for _, trigger := range r.Watches() {
		if trigger.On == r.ID() {
			return fuserrors.New(fuserrors.KindBinding, r.ID(),
				fmt.Sprintf("resource %q cannot watch itself", r.ID()))
		}
		target, ok := b.index[trigger.On]
		if !ok {
			return fuserrors.New(fuserrors.KindBinding, r.ID(),
				fmt.Sprintf("resource %q watches unknown or not-yet-added resource %q", r.ID(), trigger.On))
		}
		target.AddObserver(r.ID())
	}
	return nil
}

// Apply drives a full sequential pass over the bundle's resources via
// run, recording each implicit watched-path's pre-apply content hash so
// that drift a provider itself never reports (the watched policy's
// provider is a deliberate no-op) still fires that resource's observers.
// Returns NothingChanged if the pass left nothing changed and the runner
// was not told --no-changes-ok.
func (b *Bundle) Apply(run Runner) error {
	ctx := run.Context()

	preHash := map[string]string{}
	for _, r := range b.ordered {
		if r.Implicit() && r.TypeName() == "File" {
			preHash[r.ID()] = hashPath(ctx, pathFromImplicitID(r.ID()))
		}
	}

	dirty := false
	for _, r := range b.ordered {
		changed, err := run.ApplyResource(r)
		if err != nil {
			return err
		}
		if changed {
			dirty = true
		}
	}

	for id, before := range preHash {
		r, ok := b.index[id]
		if !ok {
			continue
		}
		after := hashPath(ctx, pathFromImplicitID(id))
		if after != before {
			dirty = true
			if err := run.FireObservers(r); err != nil {
				return err
			}
		}
	}

	if !dirty && !run.NoChangesOK() {
		return fuserrors.NothingChanged
	}
	return nil
}

func pathFromImplicitID(id string) string {
	// implicit watched File ids are always synthesised as "File[<path>]".
	if len(id) > 6 && id[:5] == "File[" && id[len(id)-1] == ']' {
		return id[5 : len(id)-1]
	}
	return ""
}

func hashPath(ctx runctx.Context, path string) string {
	if path == "" {
		return ""
	}
	data, err := ctx.Platform.Get(path)
	if err != nil {
		return ""
	}
	sum := sha1.Sum(data) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// wireBundle is the serialised, versioned bundle document. Each entry of
// its "resources" array is a single-key mapping from resource type name
// to either one field object or a list of field objects.
type wireBundle struct {
	Version   int              `json:"version"`
	Resources []map[string]any `json:"resources"`
}

// Dumps renders the bundle's explicit (non-implicit) resources to the
// versioned JSON wire format.
func (b *Bundle) Dumps() ([]byte, error) {
	wb := wireBundle{Version: wireVersion}
	for _, r := range b.ordered {
		if r.Implicit() {
			continue
		}
		fields := r.Serialize()
		if watches := r.Watches(); len(watches) > 0 {
			on := make([]string, len(watches))
			for i, w := range watches {
				on[i] = w.On
			}
			fields["watches"] = on
		}
		if changes := r.Changes(); len(changes) > 0 {
			fields["changes"] = changes
		}
		wb.Resources = append(wb.Resources, map[string]any{r.TypeName(): fields})
	}
	return json.MarshalIndent(wb, "", "  ")
}

// Loads decodes data in the versioned JSON wire format into a new Bundle,
// instantiating (and binding) each resource in array order.
func Loads(data []byte) (*Bundle, error) {
	var wb wireBundle
	if err := json.Unmarshal(data, &wb); err != nil {
		return nil, fuserrors.Wrap(fuserrors.KindParse, "", err)
	}
	if wb.Version > wireVersion {
		return nil, fuserrors.New(fuserrors.KindParse, "", fmt.Sprintf("unsupported bundle version %d", wb.Version))
	}

	b := New()
	for _, entry := range wb.Resources {
		if len(entry) != 1 {
			return nil, fuserrors.New(fuserrors.KindParse, "", "each resource entry must have exactly one type key")
		}
		for typeName, raw := range entry {
			ctor, ok := constructors[typeName]
			if !ok {
				return nil, fuserrors.New(fuserrors.KindParse, "", fmt.Sprintf("unknown resource type %q", typeName))
			}
			for _, fields := range asFieldMaps(raw) {
				r, err := ctor(fields)
				if err != nil {
					return nil, err
				}
				if err := b.Add(r); err != nil {
					return nil, err
				}
			}
		}
	}
	return b, nil
}

// asFieldMaps normalises a resource entry's value, which may be a single
// field object or a list of field objects, into a slice of field maps.
func asFieldMaps(raw any) []map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		return []map[string]any{v}
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}
