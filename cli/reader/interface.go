package reader

// Reader abstracts read-only access to a loaded bundle for CLI commands.
// Implementations may wrap a real *bundle.Bundle plus its eventstate, or
// use a stub. All methods are read-only except DebugTrigger with
// commit=true, which mutates the on-disk event state file directly (not
// through a Runner) for operator-driven recovery.
type Reader interface {
	// Inspect operations
	InspectResource(id string) (*ResourceDetail, error)

	// Stats operations
	StatsBundle() *BundleStats

	// List operations
	ListResources(opts ListResourcesOptions) []ResourceItem

	// Status aggregates bundle identity and resumable event state.
	Status() (*BundleStatus, error)

	// Debug operations
	DebugTrigger(id string, commit bool) (*TriggerResponse, error)
	DebugEventState(verbose bool) *EventStateDebugResponse
}

// defaultReader is the package-level reader instance.
// Initialized to StubReader by default.
var defaultReader Reader = NewStubReader()

// SetReader sets the package-level reader instance.
// Call this during initialization to wire up the real implementation.
func SetReader(r Reader) {
	defaultReader = r
}

// GetReader returns the current package-level reader instance.
func GetReader() Reader {
	return defaultReader
}
