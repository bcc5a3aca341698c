package bundle

import (
	"strings"
	"testing"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/resource"
	"github.com/fuselage-sh/fuselage/runctx"
)

// fakeRunner is a minimal Runner: it runs each resource's own Apply
// directly against ctx, clears nothing, and never sets triggers. It is
// enough to exercise Bundle.Add/Apply/Dumps/Loads without pulling in the
// runner package (which itself depends on bundle).
type fakeRunner struct {
	ctx         runctx.Context
	noChangesOK bool
	fired       []string
}

func (f *fakeRunner) Context() runctx.Context { return f.ctx }
func (f *fakeRunner) NoChangesOK() bool       { return f.noChangesOK }
func (f *fakeRunner) ApplyResource(r resource.Resource) (bool, error) {
	return r.Apply(f.ctx.WithResource(r.ID()))
}
func (f *fakeRunner) FireObservers(r resource.Resource) error {
	f.fired = append(f.fired, r.ID())
	return nil
}

func TestBundleAddRejectsDuplicateID(t *testing.T) {
	b := New()
	f1, err := resource.NewFile(map[string]any{"name": "/etc/motd"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f2, err := resource.NewFile(map[string]any{"name": "/etc/motd"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := b.Add(f1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = b.Add(f2)
	if err == nil {
		t.Fatal("expected an error for a duplicate ID")
	}
	if !fuserrors.IsKind(err, fuserrors.KindParse) {
		t.Errorf("expected KindParse, got %v", err)
	}
}

func TestBundleAddSynthesisesImplicitWatchedFile(t *testing.T) {
	b := New()
	e, err := resource.NewExecute(map[string]any{
		"command": "/bin/true", "changes": []any{"/etc/foo.conf"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := b.Add(e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wf, ok := b.Get("File[/etc/foo.conf]")
	if !ok {
		t.Fatal("expected an implicit File resource to be synthesised")
	}
	if !wf.Implicit() {
		t.Error("expected the synthesised file to be implicit")
	}
	if wf.Policy() != "watched" {
		t.Errorf("got policy %q, want %q", wf.Policy(), "watched")
	}
}

func TestBundleBindRejectsSelfWatch(t *testing.T) {
	b := New()
	e, err := resource.NewExecute(map[string]any{
		"command": "/bin/true", "id": "selfie", "watches": []any{"selfie"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = b.Add(e)
	if err == nil {
		t.Fatal("expected an error for a self-watch")
	}
	if !fuserrors.IsKind(err, fuserrors.KindBinding) {
		t.Errorf("expected KindBinding, got %v", err)
	}
}

func TestBundleBindRejectsForwardReference(t *testing.T) {
	b := New()
	watcher, err := resource.NewExecute(map[string]any{
		"command": "/bin/true", "id": "watcher", "watches": []any{"target"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = b.Add(watcher)
	if err == nil {
		t.Fatal("expected an error for a forward reference")
	}
	if !fuserrors.IsKind(err, fuserrors.KindBinding) {
		t.Errorf("expected KindBinding, got %v", err)
	}
}

func TestBundleBindRegistersObserver(t *testing.T) {
	b := New()
	target, err := resource.NewFile(map[string]any{"name": "/etc/target", "id": "target"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Add(target); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	watcher, err := resource.NewExecute(map[string]any{
		"command": "/bin/true", "id": "watcher", "watches": []any{"target"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Add(watcher); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, obs := range target.Observers() {
		if obs == "watcher" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected target.Observers() to contain %q, got %v", "watcher", target.Observers())
	}
}

func TestBundleApplyRaisesNothingChangedOnSecondPass(t *testing.T) {
	p := platform.NewStub()
	b := New()
	f, err := resource.NewFile(map[string]any{"name": "/etc/motd", "contents": "hi\n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Add(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	run := &fakeRunner{ctx: runctx.Context{Platform: p}}
	if err := b.Apply(run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = b.Apply(run)
	if err == nil {
		t.Fatal("expected an error on the second no-op pass")
	}
	if !fuserrors.IsKind(err, fuserrors.KindNothingChanged) {
		t.Errorf("expected KindNothingChanged, got %v", err)
	}
}

func TestBundleApplyNoChangesOKSuppressesSignal(t *testing.T) {
	p := platform.NewStub()
	b := New()
	f, err := resource.NewFile(map[string]any{"name": "/etc/motd", "contents": "hi\n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Add(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	run := &fakeRunner{ctx: runctx.Context{Platform: p}}
	if err := b.Apply(run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	run.noChangesOK = true
	if err := b.Apply(run); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBundleDumpsOmitsImplicitResources(t *testing.T) {
	b := New()
	e, err := resource.NewExecute(map[string]any{
		"command": "/bin/true", "changes": []any{"/etc/foo.conf"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Add(e); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := b.Dumps()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(data), "/etc/foo.conf") {
		t.Error("expected the implicit watched file to be omitted from Dumps")
	}
	if !strings.Contains(string(data), "/bin/true") {
		t.Error("expected the execute resource to be present in Dumps")
	}
}

func TestBundleLoadsRoundTrip(t *testing.T) {
	b := New()
	f, err := resource.NewFile(map[string]any{"name": "/etc/motd", "contents": "hi\n"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Add(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := b.Dumps()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := Loads(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Resources()) != 1 {
		t.Fatalf("got %d resources, want 1", len(loaded.Resources()))
	}
	if got, want := loaded.Resources()[0].ID(), "File[/etc/motd]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoadsRejectsUnknownVersion(t *testing.T) {
	_, err := Loads([]byte(`{"version": 2, "resources": []}`))
	if err == nil {
		t.Fatal("expected an error for an unknown version")
	}
	if !fuserrors.IsKind(err, fuserrors.KindParse) {
		t.Errorf("expected KindParse, got %v", err)
	}
}

func TestLoadYAMLRoundTrip(t *testing.T) {
	yamlDoc := []byte("version: 1\nresources:\n  - File:\n      name: /etc/motd\n      contents: \"hi\\n\"\n")
	b, err := LoadYAML(yamlDoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Resources()) != 1 {
		t.Fatalf("got %d resources, want 1", len(b.Resources()))
	}
	if got, want := b.Resources()[0].ID(), "File[/etc/motd]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
