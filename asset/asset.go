// Package asset defines the content-addressed blob store that backs
// File-kind arguments (resource/file.go's `source`, and any other
// resource whose content should travel with a bundle instead of being
// inlined). A Store both serves as the argument package's Builder
// (writing local content into "bundle://<sha1>" references at
// serialization time) and resolves those references back to bytes at
// apply time. Mirrored from the teacher's lode client: one interface,
// one local-filesystem backend, one S3 backend.
package asset

import "github.com/fuselage-sh/fuselage/argument"

// Store is a content-addressed blob store. Put satisfies
// argument.Builder; Get is the inverse, used by providers that resolve
// a FileRef's BundleRef at apply time.
type Store interface {
	argument.Builder
	Get(ref string) ([]byte, error)
	Close() error
}
