package expr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/alsroute/pkg/expr"
)

func TestNewMatcher(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		expression string
		wantErr    bool
	}{
		"simple equality":  {expression: `name == "BASS"`},
		"strings ext":      {expression: `name.lowerAscii().startsWith("guitar")`},
		"custom functions": {expression: `baseName(fold(name)) in ["E GUITAR", "EG"]`},
		"kind":             {expression: `kind == "MidiTrack"`},
		"not boolean":      {expression: `name`, wantErr: true},
		"unknown function": {expression: `name.invalidFunction()`, wantErr: true},
		"empty":            {expression: ``, wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m, err := expr.NewMatcher(tc.expression)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, m)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expression, m.String())
		})
	}
}

func TestMatcher_Match(t *testing.T) {
	t.Parallel()

	m, err := expr.NewMatcher(`baseName(fold(name)) == "E GUITAR" && kind != "GroupTrack"`)
	require.NoError(t, err)

	tcs := map[string]struct {
		name string
		kind string
		want bool
	}{
		"numbered":       {name: "E Guitar 7", kind: "AudioTrack", want: true},
		"bare":           {name: "e guitar", kind: "AudioTrack", want: true},
		"group excluded": {name: "E GUITAR 2", kind: "GroupTrack", want: false},
		"other":          {name: "KEYS 1", kind: "MidiTrack", want: false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := m.Match(tc.name, tc.kind)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBaseName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "E GUITAR", expr.BaseName("E GUITAR 11"))
	assert.Equal(t, "LOOP", expr.BaseName("LOOP 2"))
	assert.Equal(t, "BGVS", expr.BaseName("BGVS"))
	assert.Equal(t, "CHOIR", expr.BaseName(" CHOIR "))
	assert.Empty(t, expr.BaseName("123"))
}
