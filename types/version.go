package types

// Version is the canonical project version, reported by `fuselage
// version` and embedded in cmd/fuselage's build.
const Version = "0.6.1"

// ContractVersion is the notify.RunCompleted event schema version. It
// moves independently of Version: the event shape is a narrower,
// slower-changing contract than the CLI as a whole.
const ContractVersion = "1"
