package convert

import (
	"bytes"
	"encoding/json"

	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/herr"
)

// ToJSON renders doc as indented JSON via the shared plain-value
// mapping.
func ToJSON(doc *document.Document, cfg Config) ([]byte, error) {
	plain := toPlainDocument(doc)
	out, err := json.MarshalIndent(plain, "", "  ")
	if err != nil {
		return nil, herr.Wrap(herr.Conversion, 0, "failed to marshal document to JSON", err)
	}
	return out, nil
}

// FromJSON reconstructs a Document from JSON bytes, inferring struct
// schemas from uniform, id-bearing arrays.
func FromJSON(data []byte, cfg Config) (*document.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root map[string]interface{}
	if err := dec.Decode(&root); err != nil {
		return nil, herr.Wrap(herr.Conversion, 0, "failed to parse JSON input", err)
	}
	normalized := normalizeJSONNumbers(root).(map[string]interface{})
	return fromPlainDocument(normalized, cfg)
}

// normalizeJSONNumbers walks a decoded JSON value tree replacing
// json.Number leaves with int64 or float64, preserving the
// integer/float distinction encoding/json's UseNumber mode otherwise
// discards (needed so e.g. tensor and scalar round-trips stay exact).
func normalizeJSONNumbers(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, e := range t {
			t[k] = normalizeJSONNumbers(e)
		}
		return t
	case []interface{}:
		for i, e := range t {
			t[i] = normalizeJSONNumbers(e)
		}
		return t
	case json.Number:
		if iv, err := t.Int64(); err == nil {
			return iv
		}
		fv, _ := t.Float64()
		return fv
	default:
		return v
	}
}
