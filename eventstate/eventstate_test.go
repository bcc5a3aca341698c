package eventstate

import (
	"testing"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
)

func TestOpenFreshStateStartsEmpty(t *testing.T) {
	p := platform.NewStub()
	es, err := Open(p, "/var/lib/fuselage", false, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if es.IsTriggerSet("Execute[x]") {
		t.Error("expected a fresh state to have no triggers set")
	}
}

func TestOpenWithSavedFileAndNoInstructionFails(t *testing.T) {
	p := platform.NewStub()
	_ = p.MakeDirs("/var/lib/fuselage")
	_ = p.Put("/var/lib/fuselage/events.saved", []byte(`{"Execute[x]":"*"}`), 0600)

	_, err := Open(p, "/var/lib/fuselage", false, false, false)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !fuserrors.IsKind(err, fuserrors.KindSavedEventsAndNoInstruction) {
		t.Errorf("expected KindSavedEventsAndNoInstruction, got %v", err)
	}
}

func TestOpenNoResumeDeletesExistingFile(t *testing.T) {
	p := platform.NewStub()
	_ = p.MakeDirs("/var/lib/fuselage")
	_ = p.Put("/var/lib/fuselage/events.saved", []byte(`{"Execute[x]":"*"}`), 0600)

	es, err := Open(p, "/var/lib/fuselage", false, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Exists("/var/lib/fuselage/events.saved") {
		t.Error("expected the saved events file to be deleted")
	}
	if es.IsTriggerSet("Execute[x]") {
		t.Error("expected no triggers after a no-resume open")
	}
}

func TestOpenResumeReadsExistingTriggers(t *testing.T) {
	p := platform.NewStub()
	_ = p.MakeDirs("/var/lib/fuselage")
	_ = p.Put("/var/lib/fuselage/events.saved", []byte(`{"Execute[x]":"*"}`), 0600)

	es, err := Open(p, "/var/lib/fuselage", true, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !es.IsTriggerSet("Execute[x]") {
		t.Error("expected Execute[x] to be resumed as set")
	}
	if es.IsTriggerSet("Execute[y]") {
		t.Error("expected Execute[y] to remain unset")
	}
}

func TestSetAndUnsetTriggerPersistsImmediately(t *testing.T) {
	p := platform.NewStub()
	es, err := Open(p, "/var/lib/fuselage", false, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := es.SetTrigger("Execute[x]"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Exists("/var/lib/fuselage/events.saved") {
		t.Error("expected SetTrigger to persist the events file immediately")
	}
	if !es.IsTriggerSet("Execute[x]") {
		t.Error("expected Execute[x] to be set")
	}

	if err := es.UnsetTrigger("Execute[x]"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if es.IsTriggerSet("Execute[x]") {
		t.Error("expected Execute[x] to be unset")
	}
}

func TestSuccessRemovesStateFile(t *testing.T) {
	p := platform.NewStub()
	es, err := Open(p, "/var/lib/fuselage", false, false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := es.SetTrigger("Execute[x]"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := es.Success(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Exists("/var/lib/fuselage/events.saved") {
		t.Error("expected Success to remove the state file")
	}
}

func TestSimulateNeverWritesStateFile(t *testing.T) {
	p := platform.NewStub()
	es, err := Open(p, "/var/lib/fuselage", false, false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := es.SetTrigger("Execute[x]"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Exists("/var/lib/fuselage/events.saved") {
		t.Error("expected simulate mode never to write the state file")
	}
}
