// Package v1beta1 contains the v1beta1 API types for alsroute configuration.
package v1beta1

import (
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// APIVersion is the current API version for all alsroute configuration kinds.
const APIVersion = "alsroute.jacobcolvin.com/v1beta1"

// ValidAPIVersions contains all valid API versions.
var ValidAPIVersions = []string{APIVersion}

// TypeMeta contains the API version and kind common to all config types.
type TypeMeta struct {
	// APIVersion specifies the API version for this configuration.
	APIVersion string `json:"apiVersion" jsonschema:"title=API Version,required"`
	// Kind defines the type of configuration.
	Kind string `json:"kind" jsonschema:"title=Kind,required"`
}

// GetAPIVersion returns the API version.
func (tm TypeMeta) GetAPIVersion() string {
	return tm.APIVersion
}

// GetKind returns the kind.
func (tm TypeMeta) GetKind() string {
	return tm.Kind
}

// Check returns an error unless the API version is known and the kind is one
// of kinds.
func (tm TypeMeta) Check(kinds ...string) error {
	if !slices.Contains(ValidAPIVersions, tm.APIVersion) {
		return fmt.Errorf("unsupported apiVersion %q, want one of %q", tm.APIVersion, ValidAPIVersions)
	}
	if !slices.Contains(kinds, tm.Kind) {
		return fmt.Errorf("unsupported kind %q, want one of %q", tm.Kind, kinds)
	}

	return nil
}

// Object is the interface that all config types implement.
type Object interface {
	GetAPIVersion() string
	GetKind() string
	EnsureDefaults()
}

// ExtendSchemaWithEnums restricts the apiVersion and kind properties of a
// JSON schema to the given values.
func ExtendSchemaWithEnums(jss *jsonschema.Schema, apiVersions, kinds []string) {
	setEnum(jss, "apiVersion", "API Version", apiVersions)
	setEnum(jss, "kind", "Kind", kinds)
}

func setEnum(jss *jsonschema.Schema, property, title string, values []string) {
	prop, ok := jss.Properties.Get(property)
	if !ok {
		panic(property + " property not found in schema")
	}

	for _, v := range values {
		prop.OneOf = append(prop.OneOf, &jsonschema.Schema{
			Type:  "string",
			Const: v,
			Title: title,
		})
	}

	jss.Properties.Set(property, prop)
}
