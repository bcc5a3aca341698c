package argument

import (
	"crypto/sha1" //nolint:gosec // content addressing, not a security boundary
	"encoding/hex"
	"fmt"
	"os"
)

// Builder is the asset store a bundle serializer writes local File-kind
// content into. Put reads localPath and returns a "bundle://<sha1>"
// reference; a concrete Builder (see package asset) also retains the bytes
// so they travel with the serialized bundle.
type Builder interface {
	Put(localPath string) (string, error)
}

// SerializeFile resolves a File-kind value for serialization: a FileRef
// already bearing a bundle reference passes through unchanged; a FileRef
// naming a local path is handed to the builder and replaced by the
// returned content-addressed reference.
func SerializeFile(value FileRef, builder Builder) (FileRef, error) {
	if value.IsBundleRef() {
		return value, nil
	}
	if value.Local == "" {
		return FileRef{}, nil
	}
	ref, err := builder.Put(value.Local)
	if err != nil {
		return FileRef{}, fmt.Errorf("serializing file argument %q: %w", value.Local, err)
	}
	return FileRef{BundleRef: ref}, nil
}

// ContentAddress returns the "bundle://<sha1>" name for data, the format
// every Builder implementation must produce.
func ContentAddress(data []byte) string {
	sum := sha1.Sum(data) //nolint:gosec // content addressing, not a security boundary
	return "bundle://" + hex.EncodeToString(sum[:])
}

// ReadLocal is a small helper most Builder implementations use to load the
// bytes behind a local path before addressing them.
func ReadLocal(path string) ([]byte, error) {
	return os.ReadFile(path)
}
