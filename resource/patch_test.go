package resource

import (
	"testing"

	"github.com/fuselage-sh/fuselage/platform"
)

const sampleDiff = "--- a\n+++ b\n@@ -1,3 +1,3 @@\n one\n-two\n+TWO\n three\n"

func TestPatchAppliesThenIsIdempotent(t *testing.T) {
	p := platform.NewStub()
	_ = p.Put("/etc/conf", []byte("one\ntwo\nthree\n"), 0644)

	patch, err := NewPatch(map[string]any{"name": "/etc/conf", "source": sampleDiff})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, err := patch.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected changed=true on first apply")
	}

	got, _ := p.Get("/etc/conf")
	if string(got) != "one\nTWO\nthree\n" {
		t.Errorf("got %q, want %q", string(got), "one\nTWO\nthree\n")
	}

	changed, err = patch.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected changed=false on the idempotent repeat")
	}
}

func TestPatchMissingTargetFails(t *testing.T) {
	p := platform.NewStub()
	patch, err := NewPatch(map[string]any{"name": "/etc/conf", "source": sampleDiff})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := patch.Apply(testCtx(p)); err == nil {
		t.Error("expected an error for a missing target")
	}
}
