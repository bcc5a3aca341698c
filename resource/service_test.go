package resource

import (
	"testing"

	"github.com/fuselage-sh/fuselage/platform"
)

func TestSystemdProviderIsValidRequiresSystemdDir(t *testing.T) {
	sp := &SystemdProvider{}
	svc, err := NewService(map[string]any{"name": "nginx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bare := platform.NewStub()
	if sp.IsValid("running", svc, bare) {
		t.Error("expected IsValid to be false without a systemd directory")
	}

	withSystemd := platform.NewStub()
	_ = withSystemd.MakeDirs("/run/systemd/system")
	if !sp.IsValid("running", svc, withSystemd) {
		t.Error("expected IsValid to be true with a systemd directory present")
	}
}

func TestSysvProviderIsValidIsTheNonSystemdFallback(t *testing.T) {
	yp := &SysvProvider{}
	svc, err := NewService(map[string]any{"name": "nginx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bare := platform.NewStub()
	if !yp.IsValid("running", svc, bare) {
		t.Error("expected IsValid to be true without systemd")
	}

	withSystemd := platform.NewStub()
	_ = withSystemd.MakeDirs("/run/systemd/system")
	if yp.IsValid("running", svc, withSystemd) {
		t.Error("expected IsValid to be false when systemd is present")
	}
}

func TestNewServiceDefaultsToRunning(t *testing.T) {
	svc, err := NewService(map[string]any{"name": "nginx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Policy() != "running" {
		t.Errorf("got policy %q, want %q", svc.Policy(), "running")
	}
}
