// Package errors defines the Fuselage error taxonomy.
//
// Every construction-time or apply-time failure the engine can raise is one
// of the kinds below. Each kind carries a fixed exit code so the CLI can
// propagate a stable contract to callers and wrapper scripts, the way
// lode.StorageError classifies storage failures for errors.Is/As callers.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a Fuselage error for exit-code mapping and errors.Is checks.
type Kind int

const (
	KindParse Kind = iota
	KindBinding
	KindExecution
	KindCommand
	KindNonConformingPolicy
	KindNoSuitableProviders
	KindTooManyProviders
	KindInvalidGroup
	KindInvalidUser
	KindBinaryMissing
	KindDanglingSymlink
	KindPathComponentMissing
	KindPathComponentNotDirectory
	KindSavedEventsAndNoInstruction
	KindMissingDependency
	KindGeneric
	KindNothingChanged
)

// exitCodes is the stable exit-code contract from spec §6.
var exitCodes = map[Kind]int{
	KindParse:                       128,
	KindBinding:                     129,
	KindExecution:                   130,
	KindCommand:                     133,
	KindNonConformingPolicy:         136,
	KindNoSuitableProviders:         137,
	KindTooManyProviders:            138,
	KindInvalidGroup:                140,
	KindInvalidUser:                 141,
	KindBinaryMissing:               143,
	KindDanglingSymlink:             144,
	KindPathComponentMissing:        146,
	KindPathComponentNotDirectory:   147,
	KindSavedEventsAndNoInstruction: 148,
	KindMissingDependency:           152,
	KindGeneric:                     253,
	KindNothingChanged:              254,
}

// names gives each kind its `<KindName>` string-form prefix.
var names = map[Kind]string{
	KindParse:                       "ParseError",
	KindBinding:                     "BindingError",
	KindExecution:                   "ExecutionError",
	KindCommand:                     "CommandError",
	KindNonConformingPolicy:         "NonConformingPolicy",
	KindNoSuitableProviders:         "NoSuitableProviders",
	KindTooManyProviders:            "TooManyProviders",
	KindInvalidGroup:                "InvalidGroup",
	KindInvalidUser:                 "InvalidUser",
	KindBinaryMissing:               "BinaryMissing",
	KindDanglingSymlink:             "DanglingSymlink",
	KindPathComponentMissing:        "PathComponentMissing",
	KindPathComponentNotDirectory:   "PathComponentNotDirectory",
	KindSavedEventsAndNoInstruction: "SavedEventsAndNoInstruction",
	KindMissingDependency:           "MissingDependency",
	KindGeneric:                     "Error",
	KindNothingChanged:              "NothingChanged",
}

// Error is a classified Fuselage error. It preserves the underlying error in
// the chain for errors.Is/errors.As, and always resolves to a fixed exit code.
type Error struct {
	Kind     Kind
	Resource string // offending resource id, when known
	Message  string
	Err      error
}

func (e *Error) Error() string {
	name := names[e.Kind]
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Resource != "" {
		return fmt.Sprintf("%s: [%s] %s", name, e.Resource, msg)
	}
	return fmt.Sprintf("%s: %s", name, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind, so callers can
// write errors.Is(err, errors.Sentinel(KindParse)).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// ExitCode implements the cli.ExitCoder contract consumed by cmd/fuselage.
func (e *Error) ExitCode() int {
	if code, ok := exitCodes[e.Kind]; ok {
		return code
	}
	return exitCodes[KindGeneric]
}

// New constructs a classified error.
func New(kind Kind, resource, message string) *Error {
	return &Error{Kind: kind, Resource: resource, Message: message}
}

// Wrap constructs a classified error around an underlying cause.
func Wrap(kind Kind, resource string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Resource: resource, Err: err}
}

// Wrapf constructs a classified error with a formatted message around a cause.
func Wrapf(kind Kind, resource string, err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Resource: resource, Message: fmt.Sprintf(format, args...), Err: err}
}

// Sentinel returns a zero-value error of the given kind, suitable only for
// errors.Is comparisons against errors produced by New/Wrap/Wrapf.
func Sentinel(kind Kind) error {
	return &Error{Kind: kind}
}

// ExitCodeOf returns the exit code for err, defaulting to the generic code
// for errors that are not a *Error.
func ExitCodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.ExitCode()
	}
	return exitCodes[KindGeneric]
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// NothingChanged is the control-signal sentinel: not a real failure, but
// the bundle's apply pass left no resource changed and the runner was not
// told --no-changes-ok.
var NothingChanged = New(KindNothingChanged, "", "bundle apply left nothing changed")

// SavedEventsAndNoInstruction is the control-signal raised by EventState.Open
// when a prior state file exists and the caller passed neither --resume nor
// --no-resume.
var SavedEventsAndNoInstruction = New(KindSavedEventsAndNoInstruction, "", "a saved event state file exists; pass --resume or --no-resume")
