package tui

import (
	"testing"
)

func TestIsTUISupported(t *testing.T) {
	tests := []struct {
		viewType string
		want     bool
	}{
		// Supported: inspect commands
		{"inspect_resource", true},
		{"inspect_status", true},

		// Supported: stats commands
		{"stats_bundle", true},

		// Not supported: list commands
		{"list_resources", false},

		// Not supported: debug commands
		{"debug_trigger", false},
		{"debug_eventstate", false},

		// Not supported: version
		{"version", false},

		// Not supported: apply
		{"apply", false},

		// Not supported: unknown
		{"unknown", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.viewType, func(t *testing.T) {
			got := IsTUISupported(tt.viewType)
			if got != tt.want {
				t.Errorf("IsTUISupported(%q) = %v, want %v", tt.viewType, got, tt.want)
			}
		})
	}
}

func TestSupportedTUIViews(t *testing.T) {
	views := SupportedTUIViews()

	if len(views) != 3 {
		t.Errorf("SupportedTUIViews() returned %d views, expected 3", len(views))
	}

	// All returned views should be supported
	for _, v := range views {
		if !IsTUISupported(v) {
			t.Errorf("SupportedTUIViews() returned %q but IsTUISupported returns false", v)
		}
	}
}

func TestRun_UnsupportedViewType(t *testing.T) {
	err := Run("list_resources", nil)
	if err == nil {
		t.Error("Expected error for unsupported view type")
	}
}
