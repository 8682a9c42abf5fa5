package yaml

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator validates decoded YAML against a JSON schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles schemaData, identified by url, into a [Validator].
func NewValidator(url string, schemaData []byte) (*Validator, error) {
	var schema any

	err := json.Unmarshal(schemaData, &schema)
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()

	err = compiler.AddResource(url, schema)
	if err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	jss, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{schema: jss}, nil
}

// Validate validates data, as produced by decoding YAML into an any. Failures
// are returned as [*Error] with the path of the most specific violation.
func (v *Validator) Validate(data any) error {
	err := v.schema.Validate(data)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("schema validation: %w", err)
	}

	return NewError(validationErr, WithPath(pathFromLocation(deepestLocation(validationErr))))
}

// deepestLocation returns the longest instance location among err and its
// causes.
func deepestLocation(err *jsonschema.ValidationError) []string {
	longest := err.InstanceLocation
	for _, cause := range err.Causes {
		if loc := deepestLocation(cause); len(loc) > len(longest) {
			longest = loc
		}
	}

	return longest
}

func pathFromLocation(location []string) *yaml.Path {
	pb := NewPathBuilder().Root()

	for _, part := range location {
		if i, err := strconv.ParseUint(part, 10, 64); err == nil {
			pb = pb.Index(uint(i))

			continue
		}

		pb = pb.Child(part)
	}

	return pb.Build()
}
