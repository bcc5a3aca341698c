package config

import "testing"

func TestExpandEnvSubstitutesSetVariable(t *testing.T) {
	t.Setenv("FUSELAGE_TEST_VAR", "hello")
	if got, want := ExpandEnv("value: ${FUSELAGE_TEST_VAR}"), "value: hello"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnvUsesDefaultWhenUnset(t *testing.T) {
	if got, want := ExpandEnv("value: ${FUSELAGE_TEST_UNSET:-fallback}"), "value: fallback"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnvPrefersSetValueOverDefault(t *testing.T) {
	t.Setenv("FUSELAGE_TEST_VAR", "set")
	if got, want := ExpandEnv("value: ${FUSELAGE_TEST_VAR:-fallback}"), "value: set"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnvUnsetWithoutDefaultIsEmpty(t *testing.T) {
	if got, want := ExpandEnv("value: ${FUSELAGE_TEST_UNSET}"), "value: "; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnvLeavesPlainTextAlone(t *testing.T) {
	if got, want := ExpandEnv("no substitution here"), "no substitution here"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExpandEnvHandlesMultipleOccurrences(t *testing.T) {
	t.Setenv("FUSELAGE_TEST_HOST", "db.internal")
	t.Setenv("FUSELAGE_TEST_PORT", "5432")
	if got, want := ExpandEnv("${FUSELAGE_TEST_HOST}:${FUSELAGE_TEST_PORT}"), "db.internal:5432"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
