// Package argument implements the Fuselage argument kinds: the typed
// coercion and defaulting primitives every resource field is declared with.
//
// The descriptor-based argument binding used by the system this engine is
// modeled on becomes, here, a plain schema table per resource type (§9 of
// SPEC_FULL.md): a []Spec carried on the resource's class, plus a per-
// instance map of coerced values and a parallel "user supplied this" bitset.
package argument

import "fmt"

// Kind identifies one of the argument primitives a resource field may be
// declared with.
type Kind int

const (
	Boolean Kind = iota
	String
	FullPath
	Integer
	Octal
	List
	Dict
	File
	Subscription
	Policy
)

func (k Kind) String() string {
	switch k {
	case Boolean:
		return "Boolean"
	case String:
		return "String"
	case FullPath:
		return "FullPath"
	case Integer:
		return "Integer"
	case Octal:
		return "Octal"
	case List:
		return "List"
	case Dict:
		return "Dict"
	case File:
		return "File"
	case Subscription:
		return "Subscription"
	case Policy:
		return "Policy"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
