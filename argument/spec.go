package argument

// Context exposes a resource instance's currently-set fields to a Spec's
// Default function, so a default may be computed from sibling fields (e.g.
// Directory.mode defaulting differently depending on Directory.recursive).
type Context interface {
	// Get returns the coerced value for name and whether it was present
	// (user-supplied rather than defaulted).
	Get(name string) (any, bool)
}

// Spec is one field of a resource type's schema: a name, a Kind, and an
// optional default producer. The schema itself is a class-level constant
// (a []Spec literal on the resource type), never mutated per instance.
type Spec struct {
	Name    string
	Kind    Kind
	Default func(ctx Context) any
}

// ParseError is returned by Coerce when an input value cannot be coerced to
// the declared Kind. It does not import the errors package's exit-code
// machinery itself so that this leaf package stays dependency-free; callers
// (the resource package) wrap it into errors.KindParse.
type ParseError struct {
	Field   string
	Kind    Kind
	Value   any
	Message string
}

func (e *ParseError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "cannot coerce field " + e.Field + " to " + e.Kind.String()
}
