// Package notify defines the event-bus boundary a Runner publishes a
// completed apply to, mirrored from the teacher's adapter package: the
// runtime owns a Notifier's lifecycle, users only provide configuration.
package notify

import "context"

// RunCompleted is the payload published when a Runner's apply pass
// finishes, successfully or not.
type RunCompleted struct {
	ContractVersion  string `json:"contract_version"`
	EventType        string `json:"event_type"` // always "run_completed"
	BundleID         string `json:"bundle_id"`
	RunID            string `json:"run_id"`
	Outcome          string `json:"outcome"` // success, nothing_changed, failed
	ResourcesTotal   int    `json:"resources_total"`
	ResourcesChanged int    `json:"resources_changed"`
	Error            string `json:"error,omitempty"`
	Timestamp        string `json:"timestamp"` // ISO 8601
	DurationMs       int64  `json:"duration_ms"`
}

// Notifier publishes a RunCompleted event to a downstream system.
// Implementations must be safe for single use per run.
type Notifier interface {
	Notify(ctx context.Context, event *RunCompleted) error
	Close() error
}
