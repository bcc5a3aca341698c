package resource

import (
	"testing"

	"github.com/fuselage-sh/fuselage/platform"
)

func TestDirectoryApplyCreatesThenNoops(t *testing.T) {
	d, err := NewDirectory(map[string]any{"name": "/srv/app"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := platform.NewStub()
	changed, err := d.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected changed=true on first creation")
	}
	if !p.IsDir("/srv/app") {
		t.Error("expected /srv/app to be a directory")
	}

	changed, err = d.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected changed=false on the no-op repeat")
	}
}

func TestDirectoryRemove(t *testing.T) {
	p := platform.NewStub()
	_ = p.MakeDirs("/srv/app")

	d, err := NewDirectory(map[string]any{"name": "/srv/app", "policy": "remove"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, err := d.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected changed=true")
	}
	if p.Exists("/srv/app") {
		t.Error("expected /srv/app to be removed")
	}
}
