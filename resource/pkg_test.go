package resource

import (
	"testing"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
)

func TestAptProviderIsValidRequiresAptGet(t *testing.T) {
	ap := &AptProvider{}
	pkg, err := NewPackage(map[string]any{"name": "curl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bare := platform.NewStub()
	if ap.IsValid("installed", pkg, bare) {
		t.Error("expected IsValid to be false without apt-get")
	}

	withApt := platform.NewStub()
	_ = withApt.Put("/usr/bin/apt-get", []byte{}, 0755)
	if !ap.IsValid("installed", pkg, withApt) {
		t.Error("expected IsValid to be true with apt-get present")
	}
}

func TestYumProviderIsValidRequiresYum(t *testing.T) {
	yp := &YumProvider{}
	pkg, err := NewPackage(map[string]any{"name": "curl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bare := platform.NewStub()
	if yp.IsValid("installed", pkg, bare) {
		t.Error("expected IsValid to be false without yum")
	}

	withYum := platform.NewStub()
	_ = withYum.Put("/usr/bin/yum", []byte{}, 0755)
	if !yp.IsValid("installed", pkg, withYum) {
		t.Error("expected IsValid to be true with yum present")
	}
}

func TestPackageApplyNoSuitableProvidersWhenNeitherManagerPresent(t *testing.T) {
	pkg, err := NewPackage(map[string]any{"name": "curl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = pkg.Apply(testCtx(platform.NewStub()))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !fuserrors.IsKind(err, fuserrors.KindNoSuitableProviders) {
		t.Errorf("expected KindNoSuitableProviders, got %v", err)
	}
}

func TestPackageApplyTooManyProvidersWhenBothManagersPresent(t *testing.T) {
	pkg, err := NewPackage(map[string]any{"name": "curl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := platform.NewStub()
	_ = p.Put("/usr/bin/apt-get", []byte{}, 0755)
	_ = p.Put("/usr/bin/yum", []byte{}, 0755)

	_, err = pkg.Apply(testCtx(p))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !fuserrors.IsKind(err, fuserrors.KindTooManyProviders) {
		t.Errorf("expected KindTooManyProviders, got %v", err)
	}
}

func TestNewPackageRequiresName(t *testing.T) {
	if _, err := NewPackage(map[string]any{}); err == nil {
		t.Error("expected an error when name is missing")
	}
}
