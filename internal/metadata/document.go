package metadata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Document is a resolved, read-only metadata document.
type Document struct {
	fields map[string]any
	source string
}

// NewDocument wraps fields; the map is not copied and must not be mutated.
func NewDocument(fields map[string]any, source string) Document {
	return Document{fields: fields, source: source}
}

// Source is the file the document was resolved from.
func (d Document) Source() string { return d.source }

// Fields returns the underlying map.
func (d Document) Fields() map[string]any { return d.fields }

// MarshalJSON encodes the document body.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.fields)
}

// Lookup walks a dotted key path through nested objects.
func (d Document) Lookup(path string) (any, bool) {
	var current any = d.fields
	for _, key := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// String returns the first key path that holds a non-empty scalar.
func (d Document) String(paths ...string) string {
	for _, path := range paths {
		value, ok := d.Lookup(path)
		if !ok || value == nil {
			continue
		}
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case float64, bool:
			s = fmt.Sprint(v)
		default:
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Timestamp is the acquisition time recorded by the gantry.
func (d Document) Timestamp() string {
	return d.String(
		"gantry_variable_metadata.datetime",
		"gantry_variable_metadata.time",
		"lemnatec_measurement_metadata.gantry_system_variable_metadata.time",
	)
}

// SensorType is the instrument identifier.
func (d Document) SensorType() string {
	return d.String(
		"sensor_fixed_metadata.sensor_id",
		"sensor_fixed_metadata.sensor_product_name",
		"lemnatec_measurement_metadata.sensor_fixed_metadata.sensor product name",
	)
}
