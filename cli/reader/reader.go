// Package reader provides the read-side data access layer for the
// fuselage CLI.
//
// This package isolates all read operations from runtime internals.
// All read-only commands use this wrapper exclusively.
//
// The package uses dependency injection via SetReader() to allow
// swapping between stub and real implementations. Default is StubReader.
package reader

// InspectResource returns details for a specific resource.
// Delegates to the package-level reader.
func InspectResource(id string) (*ResourceDetail, error) {
	return defaultReader.InspectResource(id)
}

// StatsBundle returns bundle-wide resource statistics.
// Delegates to the package-level reader.
func StatsBundle() *BundleStats {
	return defaultReader.StatsBundle()
}

// ListResources returns a list of resources with optional filtering.
// Delegates to the package-level reader.
func ListResources(opts ListResourcesOptions) []ResourceItem {
	return defaultReader.ListResources(opts)
}

// Status returns the loaded bundle's identity and resumable event state.
// Delegates to the package-level reader.
func Status() (*BundleStatus, error) {
	return defaultReader.Status()
}

// DebugTrigger resolves a resource's outstanding trigger state.
// If commit is true, clears it from the on-disk event state file.
// Delegates to the package-level reader.
func DebugTrigger(id string, commit bool) (*TriggerResponse, error) {
	return defaultReader.DebugTrigger(id, commit)
}

// DebugEventState returns the raw on-disk event state file's contents.
// Delegates to the package-level reader.
func DebugEventState(verbose bool) *EventStateDebugResponse {
	return defaultReader.DebugEventState(verbose)
}
