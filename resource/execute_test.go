package resource

import (
	"strings"
	"testing"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
	"github.com/fuselage-sh/fuselage/platform"
)

func TestNewExecuteRejectsBothGuards(t *testing.T) {
	_, err := NewExecute(map[string]any{
		"command": "/bin/true", "unless": "/bin/true", "onlyif": "/bin/true",
	})
	if err == nil {
		t.Fatal("expected an error when both guards are set")
	}
	if !fuserrors.IsKind(err, fuserrors.KindNonConformingPolicy) {
		t.Errorf("expected KindNonConformingPolicy, got %v", err)
	}
}

func TestNewExecuteAcceptsSingleGuard(t *testing.T) {
	e, err := NewExecute(map[string]any{"command": "/bin/true", "onlyif": "/bin/true"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Policy() != "execute" {
		t.Errorf("got policy %q, want %q", e.Policy(), "execute")
	}
}

func TestExecuteApplyRunsCommand(t *testing.T) {
	p := platform.NewStub()
	_ = p.Put("/bin/true", []byte{}, 0755)

	e, err := NewExecute(map[string]any{"command": "/bin/true"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, err := e.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected changed=true")
	}
	if got := len(p.Calls); got != 1 {
		t.Errorf("got %d calls, want 1", got)
	}
}

func TestExecuteApplySkippedByUnlessGuard(t *testing.T) {
	p := platform.NewStub()
	_ = p.Put("/bin/true", []byte{}, 0755)
	p.NextRC = 0

	e, err := NewExecute(map[string]any{"command": "/bin/true", "unless": "/bin/true"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, err := e.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected changed=false when the unless guard succeeds")
	}
	if got := len(p.Calls); got != 1 {
		t.Errorf("only the unless guard should have run: got %d calls, want 1", got)
	}
}

func TestNormalizeCommandIDTruncatesLongCommands(t *testing.T) {
	short := normalizeCommandID("echo hi")
	if short != "echo hi" {
		t.Errorf("got %q, want %q", short, "echo hi")
	}

	long := normalizeCommandID("echo " + strings.Repeat("a", 60))
	if !strings.Contains(long, "-") {
		t.Errorf("expected %q to contain a hyphen", long)
	}
	if len(long) > 49 {
		t.Errorf("got length %d, want <= 49", len(long))
	}
}
