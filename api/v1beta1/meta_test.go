package v1beta1_test

import (
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/alsroute/api/v1beta1"
)

func TestTypeMeta(t *testing.T) {
	t.Parallel()

	var obj interface {
		GetAPIVersion() string
		GetKind() string
	} = v1beta1.TypeMeta{APIVersion: v1beta1.APIVersion, Kind: "Configuration"}

	assert.Equal(t, "alsroute.jacobcolvin.com/v1beta1", obj.GetAPIVersion())
	assert.Equal(t, "Configuration", obj.GetKind())
}

func TestTypeMeta_Check(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		tm      v1beta1.TypeMeta
		wantErr string
	}{
		"valid": {
			tm: v1beta1.TypeMeta{APIVersion: v1beta1.APIVersion, Kind: "Configuration"},
		},
		"unknown version": {
			tm:      v1beta1.TypeMeta{APIVersion: "alsroute.jacobcolvin.com/v2", Kind: "Configuration"},
			wantErr: `unsupported apiVersion "alsroute.jacobcolvin.com/v2"`,
		},
		"missing version": {
			tm:      v1beta1.TypeMeta{Kind: "Configuration"},
			wantErr: `unsupported apiVersion ""`,
		},
		"unknown kind": {
			tm:      v1beta1.TypeMeta{APIVersion: v1beta1.APIVersion, Kind: "RuleSheet"},
			wantErr: `unsupported kind "RuleSheet"`,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := tc.tm.Check("Configuration")
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
		})
	}
}

func newMetaSchema(props ...string) *jsonschema.Schema {
	jss := &jsonschema.Schema{Properties: jsonschema.NewProperties()}
	for _, p := range props {
		jss.Properties.Set(p, &jsonschema.Schema{Type: "string"})
	}

	return jss
}

func TestExtendSchemaWithEnums(t *testing.T) {
	t.Parallel()

	jss := newMetaSchema("apiVersion", "kind")
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, []string{"Configuration", "Other"})

	apiVersion, ok := jss.Properties.Get("apiVersion")
	require.True(t, ok)
	require.Len(t, apiVersion.OneOf, 1)
	assert.Equal(t, v1beta1.APIVersion, apiVersion.OneOf[0].Const)
	assert.Equal(t, "API Version", apiVersion.OneOf[0].Title)

	kind, ok := jss.Properties.Get("kind")
	require.True(t, ok)
	require.Len(t, kind.OneOf, 2)
	assert.Equal(t, "Configuration", kind.OneOf[0].Const)
	assert.Equal(t, "Other", kind.OneOf[1].Const)
}

func TestExtendSchemaWithEnums_MissingProperty(t *testing.T) {
	t.Parallel()

	for name, props := range map[string][]string{
		"no apiVersion": {"kind"},
		"no kind":       {"apiVersion"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Panics(t, func() {
				v1beta1.ExtendSchemaWithEnums(newMetaSchema(props...), v1beta1.ValidAPIVersions, []string{"Configuration"})
			})
		})
	}
}
