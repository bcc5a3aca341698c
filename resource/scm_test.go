package resource

import (
	"testing"

	"github.com/fuselage-sh/fuselage/platform"
)

func TestNewScmDefaultsToGitAndHead(t *testing.T) {
	s, err := NewScm(map[string]any{"name": "/srv/app", "repository": "git@example.com:org/app.git"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.SourceType() != "git" {
		t.Errorf("got SourceType %q, want %q", s.SourceType(), "git")
	}
	if s.Revision() != "HEAD" {
		t.Errorf("got Revision %q, want %q", s.Revision(), "HEAD")
	}
}

func TestGitProviderIsValidRejectsOtherBackends(t *testing.T) {
	gp := &GitProvider{}
	s, err := NewScm(map[string]any{
		"name": "/srv/app", "repository": "r", "scm": "hg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gp.IsValid("checkout", s, platform.NewStub()) {
		t.Error("expected IsValid to reject a non-git backend")
	}
}

func TestScmApplyNoSuitableProviderForNonGitBackend(t *testing.T) {
	s, err := NewScm(map[string]any{
		"name": "/srv/app", "repository": "r", "scm": "hg",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.Apply(testCtx(platform.NewStub())); err == nil {
		t.Error("expected an error for a non-git backend")
	}
}
