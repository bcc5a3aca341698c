package bundle

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	fuserrors "github.com/fuselage-sh/fuselage/errors"
)

// LoadYAML reads the human-authoring form of a bundle (`fuselage.yaml`):
// the same `{version, resources: [...]}` shape as the canonical wire
// format, but YAML instead of JSON. It round-trips through the JSON
// decoder so Loads stays the single source of parsing/validation truth.
func LoadYAML(data []byte) (*Bundle, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fuserrors.Wrap(fuserrors.KindParse, "", err)
	}

	normalised := normaliseYAML(doc)
	encoded, err := json.Marshal(normalised)
	if err != nil {
		return nil, fuserrors.Wrap(fuserrors.KindParse, "", err)
	}
	return Loads(encoded)
}

// normaliseYAML converts yaml.v3's decoded map[string]interface{} (whose
// nested maps surface as map[string]interface{} too, unlike the older
// map[interface{}]interface{} shape) into plain JSON-marshalable values.
func normaliseYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normaliseYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normaliseYAML(val)
		}
		return out
	default:
		return t
	}
}
