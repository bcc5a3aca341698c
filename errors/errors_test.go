package errors

import (
	"errors"
	"testing"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindParse, 128},
		{KindBinding, 129},
		{KindExecution, 130},
		{KindCommand, 133},
		{KindNonConformingPolicy, 136},
		{KindNoSuitableProviders, 137},
		{KindTooManyProviders, 138},
		{KindInvalidGroup, 140},
		{KindInvalidUser, 141},
		{KindBinaryMissing, 143},
		{KindDanglingSymlink, 144},
		{KindPathComponentMissing, 146},
		{KindPathComponentNotDirectory, 147},
		{KindSavedEventsAndNoInstruction, 148},
		{KindMissingDependency, 152},
		{KindGeneric, 253},
		{KindNothingChanged, 254},
	}

	for _, tt := range tests {
		e := New(tt.kind, "", "boom")
		if got := e.ExitCode(); got != tt.want {
			t.Errorf("kind %v: got exit code %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestErrorStringForm(t *testing.T) {
	e := New(KindBinding, "Execute[e]", "self-binding forbidden")
	if got, want := e.Error(), "BindingError: [Execute[e]] self-binding forbidden"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	noRes := New(KindParse, "", "unknown resource type")
	if got, want := noRes.Error(), "ParseError: unknown resource type"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWrapPreservesChain(t *testing.T) {
	cause := errors.New("permission denied")
	wrapped := Wrap(KindExecution, "File[/t/f]", cause)
	if wrapped == nil {
		t.Fatal("expected a non-nil error")
	}
	if wrapped.Unwrap() != cause {
		t.Errorf("got unwrapped %v, want %v", wrapped.Unwrap(), cause)
	}
}

func TestIsKind(t *testing.T) {
	err := New(KindTooManyProviders, "Package[nginx]", "ambiguous")
	if !IsKind(err, KindTooManyProviders) {
		t.Error("expected IsKind(KindTooManyProviders) to be true")
	}
	if IsKind(err, KindNoSuitableProviders) {
		t.Error("expected IsKind(KindNoSuitableProviders) to be false")
	}
	if !errors.Is(err, Sentinel(KindTooManyProviders)) {
		t.Error("expected errors.Is against the sentinel to be true")
	}
}

func TestExitCodeOfNonFuselageError(t *testing.T) {
	if got, want := ExitCodeOf(errors.New("plain")), 253; got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(KindExecution, "x", nil) != nil {
		t.Error("expected Wrap(nil) to return nil")
	}
	if Wrapf(KindExecution, "x", nil, "boom") != nil {
		t.Error("expected Wrapf(nil) to return nil")
	}
}
