package resource

import (
	"testing"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
)

func TestSymlinkApplyCreatesThenNoops(t *testing.T) {
	p := platform.NewStub()
	_ = p.Put("/opt/release-1", []byte("x"), 0644)

	s, err := NewSymlink(map[string]any{"name": "/opt/current", "to": "/opt/release-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, err := s.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected changed=true on first creation")
	}

	changed, err = s.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected changed=false on the no-op repeat")
	}
}

func TestSymlinkDanglingTargetRaisesUnlessForced(t *testing.T) {
	p := platform.NewStub()
	s, err := NewSymlink(map[string]any{"name": "/opt/current", "to": "/opt/missing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = s.Apply(testCtx(p))
	if err == nil {
		t.Fatal("expected an error for a dangling target")
	}
	if !fuserrors.IsKind(err, fuserrors.KindDanglingSymlink) {
		t.Errorf("expected KindDanglingSymlink, got %v", err)
	}

	forced, err := NewSymlink(map[string]any{"name": "/opt/current", "to": "/opt/missing", "force": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	changed, err := forced.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected changed=true when forced")
	}
}

func TestSymlinkRemove(t *testing.T) {
	p := platform.NewStub()
	_ = p.Symlink("/opt/release-1", "/opt/current")

	s, err := NewSymlink(map[string]any{"name": "/opt/current", "policy": "remove"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, err := s.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected changed=true")
	}
	if p.LExists("/opt/current") {
		t.Error("expected /opt/current to no longer exist")
	}
}
