// Package archive packs a bundle (its canonical JSON plus any
// content-addressed asset blobs its resources reference) into a single
// tar.gz payload for transport to a remote agent, optionally
// passphrase-encrypted at rest. Self-extracting in the sense that
// Unpack needs nothing but the payload and, if encrypted, the
// passphrase — no external index or manifest.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// format is the one-byte discriminant prefixed to every payload.
type format byte

const (
	formatPlain     format = 0
	formatEncrypted format = 1
)

// Entry is one file stored in an archive: a bundle's canonical JSON
// (conventionally named "bundle.json") plus zero or more asset blobs
// (conventionally named "assets/<sha1>").
type Entry struct {
	Name string
	Data []byte
	Mode os.FileMode
}

// Pack tar.gz's entries and, when passphrase is non-empty, encrypts the
// result with AES-256-GCM keyed by PBKDF2(passphrase).
func Pack(entries []Entry, passphrase string) ([]byte, error) {
	var tarBuf bytes.Buffer
	gz := gzip.NewWriter(&tarBuf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		mode := e.Mode
		if mode == 0 {
			mode = 0o644
		}
		hdr := &tar.Header{Name: e.Name, Mode: int64(mode), Size: int64(len(e.Data))}
		if err := tw.WriteHeader(hdr); err != nil {
			return nil, fmt.Errorf("archive: write header for %q: %w", e.Name, err)
		}
		if _, err := tw.Write(e.Data); err != nil {
			return nil, fmt.Errorf("archive: write entry %q: %w", e.Name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("archive: close tar writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("archive: close gzip writer: %w", err)
	}

	if passphrase == "" {
		return append([]byte{byte(formatPlain)}, tarBuf.Bytes()...), nil
	}

	ciphertext, err := encrypt(tarBuf.Bytes(), passphrase)
	if err != nil {
		return nil, fmt.Errorf("archive: encrypt payload: %w", err)
	}
	return append([]byte{byte(formatEncrypted)}, ciphertext...), nil
}

// Unpack reverses Pack. passphrase must match what Pack was given
// (empty for a plain payload, non-empty for an encrypted one).
func Unpack(data []byte, passphrase string) ([]Entry, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("archive: empty payload")
	}

	body := data[1:]
	switch format(data[0]) {
	case formatPlain:
		if passphrase != "" {
			return nil, fmt.Errorf("archive: payload is not encrypted but a passphrase was supplied")
		}
	case formatEncrypted:
		if passphrase == "" {
			return nil, fmt.Errorf("archive: payload is encrypted but no passphrase was supplied")
		}
		plain, err := decrypt(body, passphrase)
		if err != nil {
			return nil, fmt.Errorf("archive: decrypt payload: %w", err)
		}
		body = plain
	default:
		return nil, fmt.Errorf("archive: unknown payload format %d", data[0])
	}

	gz, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("archive: open gzip reader: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	var entries []Entry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("archive: read tar header: %w", err)
		}
		content, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("archive: read entry %q: %w", hdr.Name, err)
		}
		entries = append(entries, Entry{Name: hdr.Name, Data: content, Mode: os.FileMode(hdr.Mode)})
	}
	return entries, nil
}
