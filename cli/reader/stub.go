package reader

import "errors"

// StubReader returns shape-correct stub data for development and testing.
// Replace with a real implementation wrapping a loaded bundle.
type StubReader struct{}

// NewStubReader creates a new stub reader.
func NewStubReader() *StubReader {
	return &StubReader{}
}

// InspectResource returns stub resource details.
func (r *StubReader) InspectResource(id string) (*ResourceDetail, error) {
	if id == "" {
		return nil, errors.New("resource id required")
	}
	return &ResourceDetail{
		ID:      id,
		Type:    "File",
		Policy:  "present",
		Watches: nil,
		Changes: []string{"/etc/stub.conf"},
		Fields: map[string]any{
			"path": "/etc/stub.conf",
			"mode": "0644",
		},
	}, nil
}

// StatsBundle returns stub bundle statistics.
func (r *StubReader) StatsBundle() *BundleStats {
	return &BundleStats{
		Total:      12,
		Implicit:   2,
		ByType:     map[string]int{"File": 6, "Execute": 3, "Service": 3},
		ByPolicy:   map[string]int{"present": 9, "restarted": 3},
		Subscribed: 4,
	}
}

// ListResources returns a stub resource list.
func (r *StubReader) ListResources(opts ListResourcesOptions) []ResourceItem {
	items := []ResourceItem{
		{ID: "File[/etc/app.conf]", Type: "File", Policy: "present"},
		{ID: "svc-app", Type: "Service", Policy: "restarted"},
		{ID: "pkg-app", Type: "Package", Policy: "installed"},
	}

	if opts.Type != "" {
		filtered := make([]ResourceItem, 0)
		for _, item := range items {
			if item.Type == opts.Type {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}

	return items
}

// Status returns stub bundle status.
func (r *StubReader) Status() (*BundleStatus, error) {
	return &BundleStatus{
		BundleID:        "stub-bundle-001",
		ResourceCount:   12,
		PendingTriggers: nil,
		StatePath:       "/var/lib/fuselage",
	}, nil
}

// DebugTrigger returns a stub trigger resolution.
func (r *StubReader) DebugTrigger(id string, commit bool) (*TriggerResponse, error) {
	if id == "" {
		return nil, errors.New("resource id required")
	}
	return &TriggerResponse{
		ResourceID: id,
		WasSet:     true,
		Cleared:    commit,
	}, nil
}

// DebugEventState returns stub event state debug information.
func (r *StubReader) DebugEventState(verbose bool) *EventStateDebugResponse {
	resp := &EventStateDebugResponse{
		StatePath: "/var/lib/fuselage/events.saved",
		Exists:    true,
	}
	if verbose {
		resp.PendingTriggers = []string{"svc-app"}
	}
	return resp
}

// Verify StubReader implements Reader.
var _ Reader = (*StubReader)(nil)
