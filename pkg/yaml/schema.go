package yaml

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaGenerator reflects a JSON schema from a Go type.
type SchemaGenerator struct {
	reflector *jsonschema.Reflector
	v         any
}

// NewSchemaGenerator creates a new [SchemaGenerator] for the type of v.
func NewSchemaGenerator(v any) *SchemaGenerator {
	return &SchemaGenerator{
		v: v,
		reflector: &jsonschema.Reflector{
			ExpandedStruct:             true,
			RequiredFromJSONSchemaTags: true,
		},
	}
}

// Generate returns the indented JSON schema.
func (g *SchemaGenerator) Generate() ([]byte, error) {
	schema := g.reflector.Reflect(g.v)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(data, '\n'), nil
}
