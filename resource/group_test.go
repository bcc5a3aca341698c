package resource

import (
	"testing"

	"github.com/fuselage-sh/fuselage/platform"
)

func TestNewGroupDefaultsToApply(t *testing.T) {
	g, err := NewGroup(map[string]any{"name": "staff"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Policy() != "apply" {
		t.Errorf("got policy %q, want %q", g.Policy(), "apply")
	}
}

func TestGroupApplyNoopWhenGidAlreadyMatches(t *testing.T) {
	p := platform.NewStub()
	p.Groups["staff"] = platform.Group{Name: "staff", Gid: 50}

	g, err := NewGroup(map[string]any{"name": "staff", "gid": 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, err := g.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected changed=false")
	}
	if len(p.Calls) != 0 {
		t.Errorf("expected no platform calls, got %v", p.Calls)
	}
}

func TestGroupRemoveNoopWhenAbsent(t *testing.T) {
	p := platform.NewStub()

	g, err := NewGroup(map[string]any{"name": "staff", "policy": "remove"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, err := g.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected changed=false")
	}
	if len(p.Calls) != 0 {
		t.Errorf("expected no platform calls, got %v", p.Calls)
	}
}
