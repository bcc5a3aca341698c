package resource

import (
	"strings"
	"testing"

	"github.com/fuselage-sh/fuselage/platform"
)

func TestLineInFileAppendsThenNoops(t *testing.T) {
	p := platform.NewStub()
	_ = p.Put("/etc/hosts", []byte("127.0.0.1 localhost\n"), 0644)

	l, err := NewLineInFile(map[string]any{"name": "/etc/hosts", "line": "10.0.0.1 app"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, err := l.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected changed=true on first apply")
	}

	got, _ := p.Get("/etc/hosts")
	if !strings.Contains(string(got), "10.0.0.1 app") {
		t.Errorf("got %q, want it to contain %q", string(got), "10.0.0.1 app")
	}

	changed, err = l.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Error("expected changed=false on the no-op repeat")
	}
}

func TestLineInFileMatchReplacesExistingLine(t *testing.T) {
	p := platform.NewStub()
	_ = p.Put("/etc/conf", []byte("Port 22\n"), 0644)

	l, err := NewLineInFile(map[string]any{
		"name": "/etc/conf", "line": "Port 2222", "match": "^Port ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, err := l.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected changed=true")
	}

	got, _ := p.Get("/etc/conf")
	if string(got) != "Port 2222\n" {
		t.Errorf("got %q, want %q", string(got), "Port 2222\n")
	}
}

func TestLineInFileAbsentRemoves(t *testing.T) {
	p := platform.NewStub()
	_ = p.Put("/etc/conf", []byte("a\nb\nc\n"), 0644)

	l, err := NewLineInFile(map[string]any{"name": "/etc/conf", "line": "b", "policy": "absent"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed, err := l.Apply(testCtx(p))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Error("expected changed=true")
	}

	got, _ := p.Get("/etc/conf")
	if string(got) != "a\nc\n" {
		t.Errorf("got %q, want %q", string(got), "a\nc\n")
	}
}
