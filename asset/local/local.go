// Package local implements a filesystem-backed asset.Store: blobs are
// written under a two-character fan-out directory of their content
// address, the way most content-addressed stores avoid a single huge
// directory.
package local

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fuselage-sh/fuselage/argument"
	"github.com/fuselage-sh/fuselage/asset"
)

// Store is a local directory backing an asset.Store.
type Store struct {
	root string
}

// New creates a Store rooted at dir, creating it if necessary.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("asset/local: create root %q: %w", dir, err)
	}
	return &Store{root: dir}, nil
}

// Put reads localPath and writes it under the store's content address,
// returning the "bundle://<sha1>" reference.
func (s *Store) Put(localPath string) (string, error) {
	data, err := argument.ReadLocal(localPath)
	if err != nil {
		return "", fmt.Errorf("asset/local: read %q: %w", localPath, err)
	}
	ref := argument.ContentAddress(data)
	path, err := s.pathFor(ref)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("asset/local: create blob dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("asset/local: write blob: %w", err)
	}
	return ref, nil
}

// Get resolves ref back to its bytes.
func (s *Store) Get(ref string) ([]byte, error) {
	path, err := s.pathFor(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("asset/local: read blob %q: %w", ref, err)
	}
	return data, nil
}

// Close is a no-op: the local store holds no live resources.
func (s *Store) Close() error { return nil }

func (s *Store) pathFor(ref string) (string, error) {
	key := strings.TrimPrefix(ref, "bundle://")
	if key == ref || len(key) < 2 {
		return "", fmt.Errorf("asset/local: malformed reference %q", ref)
	}
	return filepath.Join(s.root, key[:2], key), nil
}

var _ asset.Store = (*Store)(nil)
