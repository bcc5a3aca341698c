// Package reader provides the read-side data access layer for the
// fuselage CLI: listing and inspecting a loaded bundle's resources
// without driving an apply.
//
// Current implementation returns stub data over a StubReader. The real
// implementation wraps a loaded *bundle.Bundle plus its eventstate.
package reader

import "time"

// ResourceItem is one row of `fuselage list resources`.
type ResourceItem struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Policy   string `json:"policy"`
	Implicit bool   `json:"implicit"`
}

// ResourceDetail is the full `fuselage inspect resource <id>` payload.
type ResourceDetail struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Policy    string         `json:"policy"`
	Watches   []string       `json:"watches,omitempty"`
	Changes   []string       `json:"changes,omitempty"`
	Observers []string       `json:"observers,omitempty"`
	Implicit  bool           `json:"implicit"`
	Fields    map[string]any `json:"fields"`
}

// BundleStats summarises a loaded bundle for `fuselage stats bundle`.
type BundleStats struct {
	Total      int            `json:"total"`
	Implicit   int            `json:"implicit"`
	ByType     map[string]int `json:"by_type"`
	ByPolicy   map[string]int `json:"by_policy"`
	Subscribed int            `json:"subscribed"`
}

// BundleStatus is the `fuselage inspect status` payload: the loaded bundle's
// identity plus whatever resumable state its event store is holding.
type BundleStatus struct {
	BundleID        string    `json:"bundle_id"`
	ResourceCount   int       `json:"resource_count"`
	PendingTriggers []string  `json:"pending_triggers"`
	StatePath       string    `json:"state_path"`
	LastRunAt       *time.Time `json:"last_run_at,omitempty"`
}

// ListResourcesOptions filters `fuselage list resources`.
type ListResourcesOptions struct {
	Type  string
	Limit int
}

// TriggerResponse is the result of resolving one resource's trigger
// state for `fuselage debug trigger`.
type TriggerResponse struct {
	ResourceID string `json:"resource_id"`
	WasSet     bool   `json:"was_set"`
	Cleared    bool   `json:"cleared"`
}

// EventStateDebugResponse is the `fuselage debug eventstate` payload.
type EventStateDebugResponse struct {
	StatePath       string   `json:"state_path"`
	Exists          bool     `json:"exists"`
	PendingTriggers []string `json:"pending_triggers,omitempty"`
}
