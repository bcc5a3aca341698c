package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fuselage.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestLoadParsesTopLevelAndNestedFields(t *testing.T) {
	path := writeConfig(t, `
resume: true
no_changes_ok: true
state_path: /var/run/fuselage
asset:
  backend: s3
  bucket: my-bundles
  region: us-east-1
notify:
  type: webhook
  url: https://hooks.example.com/run
  timeout: 15s
  retries: 5
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.Resume {
		t.Error("expected Resume=true")
	}
	if !cfg.NoChangesOK {
		t.Error("expected NoChangesOK=true")
	}
	if cfg.StatePath != "/var/run/fuselage" {
		t.Errorf("got StatePath %q, want %q", cfg.StatePath, "/var/run/fuselage")
	}
	if cfg.Asset.Backend != "s3" {
		t.Errorf("got Asset.Backend %q, want %q", cfg.Asset.Backend, "s3")
	}
	if cfg.Asset.Bucket != "my-bundles" {
		t.Errorf("got Asset.Bucket %q, want %q", cfg.Asset.Bucket, "my-bundles")
	}
	if cfg.Asset.Region != "us-east-1" {
		t.Errorf("got Asset.Region %q, want %q", cfg.Asset.Region, "us-east-1")
	}
	if cfg.Notify.Type != "webhook" {
		t.Errorf("got Notify.Type %q, want %q", cfg.Notify.Type, "webhook")
	}
	if cfg.Notify.URL != "https://hooks.example.com/run" {
		t.Errorf("got Notify.URL %q, want %q", cfg.Notify.URL, "https://hooks.example.com/run")
	}
	if got, want := int(cfg.Notify.Timeout.Duration), 15_000_000_000; got != want {
		t.Errorf("got Notify.Timeout %d, want %d", got, want)
	}
	if cfg.Notify.Retries == nil {
		t.Fatal("expected Notify.Retries to be set")
	}
	if *cfg.Notify.Retries != 5 {
		t.Errorf("got Notify.Retries %d, want 5", *cfg.Notify.Retries)
	}
}

func TestLoadExpandsEnvironmentVariablesBeforeDecoding(t *testing.T) {
	t.Setenv("FUSELAGE_TEST_BUCKET", "env-bucket")
	path := writeConfig(t, "asset:\n  backend: s3\n  bucket: ${FUSELAGE_TEST_BUCKET}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Asset.Bucket != "env-bucket" {
		t.Errorf("got Asset.Bucket %q, want %q", cfg.Asset.Bucket, "env-bucket")
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "not_a_real_field: true\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoadToleratesEmptyFile(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, &Config{}) {
		t.Errorf("got %+v, want zero-value Config", cfg)
	}
}
