// Package config loads an optional fuselage.yaml providing defaults for
// runner flags and ambient integrations. CLI flags always override
// whatever a config file sets.
package config

import (
	"fmt"
	"time"
)

// Config mirrors a fuselage.yaml file. Every field is optional and acts
// only as a default: the CLI layer applies flags over whatever Load
// returns.
type Config struct {
	Resume      bool   `yaml:"resume"`
	NoResume    bool   `yaml:"no_resume"`
	NoChangesOK bool   `yaml:"no_changes_ok"`
	Simulate    bool   `yaml:"simulate"`
	Verbosity   int    `yaml:"verbosity"`
	StatePath   string `yaml:"state_path"`

	Asset  AssetConfig  `yaml:"asset"`
	Notify NotifyConfig `yaml:"notify"`
	Remote RemoteConfig `yaml:"remote"`
}

// AssetConfig selects and configures the asset.Store backing a bundle's
// File "source" references.
type AssetConfig struct {
	// Backend is "local" or "s3". Empty means no asset store is wired.
	Backend string `yaml:"backend"`

	// Path is the local store's root directory, used when Backend is "local".
	Path string `yaml:"path"`

	// Bucket, Prefix, Region, Endpoint, and PathStyle configure an s3 store.
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// NotifyConfig selects and configures the notify.Notifier published to
// once a run completes.
type NotifyConfig struct {
	// Type is "webhook" or "redis". Empty means no Notifier is wired.
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	Retries *int              `yaml:"retries,omitempty"`
}

// RemoteConfig is the config file's `remote` section, carrying the same
// fields as transport.RemoteConfig. No CLI command reads it.
type RemoteConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port,omitempty"`
	IdentityFile string `yaml:"identity_file,omitempty"`
	SSHBinary    string `yaml:"ssh_binary,omitempty"`
	SCPBinary    string `yaml:"scp_binary,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
