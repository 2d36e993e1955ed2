package convert

import (
	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/herr"
	"gopkg.in/yaml.v3"
)

// ToYAML renders doc as YAML via the shared plain-value mapping.
func ToYAML(doc *document.Document, cfg Config) ([]byte, error) {
	plain := toPlainDocument(doc)
	out, err := yaml.Marshal(plain)
	if err != nil {
		return nil, herr.Wrap(herr.Conversion, 0, "failed to marshal document to YAML", err)
	}
	return out, nil
}

// FromYAML reconstructs a Document from YAML bytes, inferring struct
// schemas from uniform, id-bearing sequences.
func FromYAML(data []byte, cfg Config) (*document.Document, error) {
	var root map[string]interface{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, herr.Wrap(herr.Conversion, 0, "failed to parse YAML input", err)
	}
	normalized, err := normalizeYAML(root)
	if err != nil {
		return nil, err
	}
	m, ok := normalized.(map[string]interface{})
	if !ok {
		return nil, herr.New(herr.Conversion, "YAML document root must be a mapping")
	}
	return fromPlainDocument(m, cfg)
}

// normalizeYAML converts yaml.v3's decoded shapes (map[string]interface{}
// is already used for block mappings with string keys, but nested
// sequences/maps may carry map[interface{}]interface{} in older decode
// paths) into the map[string]interface{}/[]interface{} shape
// fromPlainField expects, and widens int/uint variants to int64.
func normalizeYAML(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			n, err := normalizeYAML(e)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, herr.New(herr.Conversion, "YAML mapping keys must be strings")
			}
			n, err := normalizeYAML(e)
			if err != nil {
				return nil, err
			}
			out[ks] = n
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			n, err := normalizeYAML(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case int:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	default:
		return v, nil
	}
}
