package runner

import (
	"testing"

	"github.com/fuselage-sh/fuselage/bundle"
	"github.com/fuselage-sh/fuselage/platform"
	"github.com/fuselage-sh/fuselage/resource"
)

func TestWatchedPaths_CollectsChangesTargets(t *testing.T) {
	p := platform.NewStub()
	f, err := resource.NewFile(map[string]any{"name": "/etc/f", "contents": "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	exe, err := resource.NewExecute(map[string]any{
		"command": "echo hi",
		"policy":  "execute",
		"changes": []any{"/etc/f"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b := bundle.New()
	if err := b.Add(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.Add(exe); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	run, err := New(b, p, Options{StatePath: "/var/run/fuselage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	paths := run.watchedPaths()
	found := false
	count := 0
	for _, path := range paths {
		if path == "/etc/f" {
			found = true
			count++
		}
	}
	if !found {
		t.Errorf("expected watchedPaths() to contain %q, got %v", "/etc/f", paths)
	}

	// the path is listed once, not once per resource in the bundle
	if count != 1 {
		t.Errorf("got %d occurrences of /etc/f, want 1", count)
	}
}

func TestWatch_StopsOnSignal(t *testing.T) {
	p := platform.NewStub()
	b := bundle.New()

	run, err := New(b, p, Options{StatePath: "/var/run/fuselage"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stop := make(chan struct{})
	close(stop)

	// With stop already closed, Watch must return promptly without
	// requiring a prior Run() (and thus a nil logger).
	if err := run.Watch(stop); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
