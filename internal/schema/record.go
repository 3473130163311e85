// Package schema describes property records as JSON Schema and checks raw
// records against it.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"

	"github.com/usestring/propsearch-mcp/pkg/property"
)

var (
	recordSchemaOnce sync.Once
	recordSchema     *jsonschema.Schema
)

// RecordSchema returns the JSON Schema of a property record. Every field is
// optional and unknown fields are allowed, matching what the API actually
// returns.
func RecordSchema() *jsonschema.Schema {
	recordSchemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			Anonymous:                 true,
			DoNotReference:            true,
			ExpandedStruct:            true,
			AllowAdditionalProperties: true,
		}
		recordSchema = r.Reflect(&property.Record{})
		recordSchema.Title = "Property record"
		recordSchema.Description = "One parcel as returned by the RentCast property search API."
	})
	return recordSchema
}

// SchemaToMap converts a schema to a generic map for JSON serialization.
func SchemaToMap(s *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}
	return result, nil
}
