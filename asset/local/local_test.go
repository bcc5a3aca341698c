package local

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fuselage-sh/fuselage/argument"
)

func TestPutThenGetRoundTrips(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src := filepath.Join(dir, "payload.txt")
	if err := os.WriteFile(src, []byte("hello bundle"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ref, err := s.Put(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := argument.ContentAddress([]byte("hello bundle")); ref != want {
		t.Errorf("got ref %q, want %q", ref, want)
	}

	data, err := s.Get(ref)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello bundle" {
		t.Errorf("got %q, want %q", string(data), "hello bundle")
	}
}

func TestPutIsContentAddressedAndDeduplicates(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(a, []byte("same content"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := os.WriteFile(b, []byte("same content"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refA, err := s.Put(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	refB, err := s.Put(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if refA != refB {
		t.Errorf("identical content must address to the same reference: got %q and %q", refA, refB)
	}
}

func TestGetRejectsMalformedReference(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.Get("not-a-bundle-ref"); err == nil {
		t.Fatal("expected an error for a malformed reference")
	}
}

func TestGetMissingReferenceFails(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.Get(argument.ContentAddress([]byte("never written"))); err == nil {
		t.Fatal("expected an error for a missing reference")
	}
}
