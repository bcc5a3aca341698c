// Package transport implements the wire protocol for remote apply: a
// length-prefixed msgpack frame codec (mirrored from the teacher's
// ipc/frame.go) carrying an archived bundle to a remote host, a stream
// of apply-log lines back, and a final result frame — plus a thin
// ssh/scp wrapper that moves the bytes.
package transport

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame size constants, identical to the teacher's IPC contract.
const (
	// MaxFrameSize is the maximum frame size (16 MiB), including the
	// length prefix.
	MaxFrameSize = 16 * 1024 * 1024
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4
	// MaxPayloadSize is the maximum payload size.
	MaxPayloadSize = MaxFrameSize - LengthPrefixSize
)

// Frame type discriminants.
const (
	// ArchiveUploadType carries a packed bundle+assets archive to the
	// remote agent before a run starts.
	ArchiveUploadType = "archive_upload"
	// ApplyLogType carries one streamed log record from a remote run.
	ApplyLogType = "apply_log"
	// ApplyResultType carries the terminal outcome of a remote run.
	ApplyResultType = "apply_result"
)

// FrameErrorKind classifies frame decoding errors.
type FrameErrorKind int

const (
	// FrameErrorPartial indicates a truncated or incomplete frame.
	FrameErrorPartial FrameErrorKind = iota
	// FrameErrorTooLarge indicates a frame exceeding MaxFrameSize.
	FrameErrorTooLarge
	// FrameErrorDecode indicates a msgpack decoding error.
	FrameErrorDecode
)

// FrameError represents a frame decoding error.
type FrameError struct {
	Kind FrameErrorKind
	Msg  string
	Err  error
}

func (e *FrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *FrameError) Unwrap() error { return e.Err }

// IsFatal reports whether the remote-apply stream must be torn down:
// partial and oversized frames are unrecoverable, a bad discriminant is
// not.
func (e *FrameError) IsFatal() bool {
	return e.Kind == FrameErrorPartial || e.Kind == FrameErrorTooLarge
}

// IsFatalFrameError reports whether err is a fatal *FrameError.
func IsFatalFrameError(err error) bool {
	var frameErr *FrameError
	if errors.As(err, &frameErr) {
		return frameErr.IsFatal()
	}
	return false
}

// ArchiveUploadFrame carries a packed bundle archive to the remote
// agent. Archive holds the bytes produced by archive.Pack.
type ArchiveUploadFrame struct {
	Type     string `msgpack:"type"`
	BundleID string `msgpack:"bundle_id"`
	Archive  []byte `msgpack:"archive"`
}

// ApplyLogFrame carries one streamed log line from a remote run.
type ApplyLogFrame struct {
	Type     string `msgpack:"type"`
	RunID    string `msgpack:"run_id"`
	Resource string `msgpack:"resource"`
	Level    string `msgpack:"level"`
	Message  string `msgpack:"message"`
}

// ApplyResultFrame carries the terminal outcome of a remote run.
type ApplyResultFrame struct {
	Type    string `msgpack:"type"`
	RunID   string `msgpack:"run_id"`
	Outcome string `msgpack:"outcome"`
	Error   string `msgpack:"error,omitempty"`
}

// FrameDecoder decodes length-prefixed msgpack frames from a stream.
type FrameDecoder struct {
	reader io.Reader
}

// NewFrameDecoder wraps r for frame-at-a-time reading, buffering it if
// it isn't already a *bufio.Reader.
func NewFrameDecoder(r io.Reader) *FrameDecoder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &FrameDecoder{reader: br}
}

// ReadFrame reads one frame's raw msgpack payload from the stream.
func (d *FrameDecoder) ReadFrame() ([]byte, error) {
	var lengthBuf [LengthPrefixSize]byte
	if _, err := io.ReadFull(d.reader, lengthBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, &FrameError{Kind: FrameErrorPartial, Msg: "failed to read length prefix", Err: err}
	}

	payloadSize := binary.BigEndian.Uint32(lengthBuf[:])
	if payloadSize > MaxPayloadSize {
		return nil, &FrameError{
			Kind: FrameErrorTooLarge,
			Msg:  fmt.Sprintf("payload size %d exceeds maximum %d", payloadSize, MaxPayloadSize),
		}
	}

	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(d.reader, payload); err != nil {
		return nil, &FrameError{Kind: FrameErrorPartial, Msg: "failed to read payload", Err: err}
	}
	return payload, nil
}

// probeFrameType extracts the "type" field from a msgpack map without
// fully unmarshaling the payload.
func probeFrameType(payload []byte) (string, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(payload))
	n, err := dec.DecodeMapLen()
	if err != nil {
		return "", err
	}
	for range n {
		key, err := dec.DecodeString()
		if err != nil {
			return "", err
		}
		if key == "type" {
			return dec.DecodeString()
		}
		if err := dec.Skip(); err != nil {
			return "", err
		}
	}
	return "", errors.New("missing type field")
}

// DecodeFrame decodes payload into one of *ArchiveUploadFrame,
// *ApplyLogFrame or *ApplyResultFrame based on its "type" discriminant.
func DecodeFrame(payload []byte) (any, error) {
	frameType, err := probeFrameType(payload)
	if err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode frame type", Err: err}
	}

	switch frameType {
	case ArchiveUploadType:
		return DecodeArchiveUpload(payload)
	case ApplyLogType:
		return DecodeApplyLog(payload)
	case ApplyResultType:
		return DecodeApplyResult(payload)
	default:
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "unknown frame type " + frameType}
	}
}

// DecodeArchiveUpload decodes payload as an ArchiveUploadFrame.
func DecodeArchiveUpload(payload []byte) (*ArchiveUploadFrame, error) {
	var f ArchiveUploadFrame
	if err := msgpack.Unmarshal(payload, &f); err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode archive upload", Err: err}
	}
	return &f, nil
}

// DecodeApplyLog decodes payload as an ApplyLogFrame.
func DecodeApplyLog(payload []byte) (*ApplyLogFrame, error) {
	var f ApplyLogFrame
	if err := msgpack.Unmarshal(payload, &f); err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode apply log", Err: err}
	}
	return &f, nil
}

// DecodeApplyResult decodes payload as an ApplyResultFrame.
func DecodeApplyResult(payload []byte) (*ApplyResultFrame, error) {
	var f ApplyResultFrame
	if err := msgpack.Unmarshal(payload, &f); err != nil {
		return nil, &FrameError{Kind: FrameErrorDecode, Msg: "failed to decode apply result", Err: err}
	}
	return &f, nil
}

// EncodeFrame prefixes payload with its 4-byte big-endian length.
func EncodeFrame(payload []byte) []byte {
	buf := make([]byte, LengthPrefixSize+len(payload))
	binary.BigEndian.PutUint32(buf[:LengthPrefixSize], uint32(len(payload)))
	copy(buf[LengthPrefixSize:], payload)
	return buf
}

// EncodeArchiveUpload encodes f as a length-prefixed msgpack frame.
func EncodeArchiveUpload(f *ArchiveUploadFrame) ([]byte, error) {
	f.Type = ArchiveUploadType
	payload, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("transport: encode archive upload: %w", err)
	}
	return EncodeFrame(payload), nil
}

// EncodeApplyLog encodes f as a length-prefixed msgpack frame.
func EncodeApplyLog(f *ApplyLogFrame) ([]byte, error) {
	f.Type = ApplyLogType
	payload, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("transport: encode apply log: %w", err)
	}
	return EncodeFrame(payload), nil
}

// EncodeApplyResult encodes f as a length-prefixed msgpack frame.
func EncodeApplyResult(f *ApplyResultFrame) ([]byte, error) {
	f.Type = ApplyResultType
	payload, err := msgpack.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("transport: encode apply result: %w", err)
	}
	return EncodeFrame(payload), nil
}
