package argument

import (
	"fmt"
	"strconv"
	"strings"
)

// truthyStrings are the case-insensitive string forms Boolean.coerce treats
// as true. Anything else textual coerces to false.
var truthyStrings = map[string]bool{
	"1":    true,
	"yes":  true,
	"on":   true,
	"true": true,
}

// Coerce applies a Kind's coercion rule to a raw value (as decoded from
// JSON/YAML, or passed programmatically) and returns the canonical stored
// value for that Kind.
func Coerce(field string, kind Kind, raw any) (any, error) {
	switch kind {
	case Boolean:
		return coerceBoolean(raw), nil
	case String:
		return coerceString(field, raw)
	case FullPath:
		return coerceFullPath(field, raw)
	case Integer:
		return coerceInteger(field, raw, 10)
	case Octal:
		return coerceInteger(field, raw, 8)
	case List:
		return coerceList(field, raw)
	case Dict:
		return coerceDict(field, raw)
	case File:
		return coerceFile(field, raw)
	case Subscription:
		return coerceSubscription(field, raw)
	case Policy:
		return coercePolicyName(field, raw)
	default:
		return nil, &ParseError{Field: field, Kind: kind, Value: raw, Message: fmt.Sprintf("unknown argument kind for field %q", field)}
	}
}

func coerceBoolean(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return truthyStrings[strings.ToLower(v)]
	case nil:
		return false
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

func coerceString(field string, raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

func coerceFullPath(field string, raw any) (any, error) {
	s, err := coerceString(field, raw)
	if err != nil {
		return nil, err
	}
	str, _ := s.(string)
	if str == "" || !strings.HasPrefix(str, "/") {
		return nil, &ParseError{Field: field, Kind: FullPath, Value: raw, Message: fmt.Sprintf("field %q must be an absolute path beginning with '/', got %q", field, str)}
	}
	return str, nil
}

func coerceInteger(field string, raw any, base int) (any, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		// JSON numbers decode as float64; accept only exact integers.
		if v != float64(int(v)) {
			return nil, &ParseError{Field: field, Kind: Integer, Value: raw, Message: fmt.Sprintf("field %q is not an integer: %v", field, v)}
		}
		return int(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), base, 64)
		if err != nil {
			return nil, &ParseError{Field: field, Kind: Integer, Value: raw, Message: fmt.Sprintf("field %q cannot be parsed as base-%d integer: %q", field, base, v)}
		}
		return int(n), nil
	default:
		return nil, &ParseError{Field: field, Kind: Integer, Value: raw, Message: fmt.Sprintf("field %q has unsupported type %T", field, raw)}
	}
}

func coerceList(field string, raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	default:
		return nil, &ParseError{Field: field, Kind: List, Value: raw, Message: fmt.Sprintf("field %q must be a list, got %T", field, raw)}
	}
}

func coerceDict(field string, raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, nil
	default:
		return nil, &ParseError{Field: field, Kind: Dict, Value: raw, Message: fmt.Sprintf("field %q must be a dict, got %T", field, raw)}
	}
}

// FileRef is the coerced value of a File-kind argument: either a local path
// (not yet serialized into a bundle) or a content-addressed bundle
// reference of the form "bundle://<sha1>".
type FileRef struct {
	Local     string
	BundleRef string
}

// IsBundleRef reports whether this FileRef already resolved to a
// content-addressed bundle asset.
func (f FileRef) IsBundleRef() bool {
	return strings.HasPrefix(f.BundleRef, "bundle://")
}

func coerceFile(field string, raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return FileRef{}, nil
	case FileRef:
		return v, nil
	case string:
		if strings.HasPrefix(v, "bundle://") {
			return FileRef{BundleRef: v}, nil
		}
		return FileRef{Local: v}, nil
	default:
		return nil, &ParseError{Field: field, Kind: File, Value: raw, Message: fmt.Sprintf("field %q must be a path string, got %T", field, raw)}
	}
}

// PolicyTrigger is one subscription edge: this resource watches the
// resource identified by On, and is triggered when it changes.
type PolicyTrigger struct {
	On string
}

func coerceSubscription(field string, raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return []PolicyTrigger{}, nil
	case []PolicyTrigger:
		return v, nil
	case []string:
		out := make([]PolicyTrigger, len(v))
		for i, s := range v {
			out[i] = PolicyTrigger{On: s}
		}
		return out, nil
	case []any:
		out := make([]PolicyTrigger, 0, len(v))
		for _, item := range v {
			switch t := item.(type) {
			case string:
				out = append(out, PolicyTrigger{On: t})
			case PolicyTrigger:
				out = append(out, t)
			default:
				return nil, &ParseError{Field: field, Kind: Subscription, Value: raw, Message: fmt.Sprintf("field %q has a non-string watch entry %T", field, item)}
			}
		}
		return out, nil
	default:
		return nil, &ParseError{Field: field, Kind: Subscription, Value: raw, Message: fmt.Sprintf("field %q must be a list of resource ids, got %T", field, raw)}
	}
}

func coercePolicyName(field string, raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return nil, &ParseError{Field: field, Kind: Policy, Value: raw, Message: fmt.Sprintf("field %q must name a policy, got %T", field, raw)}
	}
}
