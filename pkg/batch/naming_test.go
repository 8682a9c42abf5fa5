package batch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/macropower/alsroute/pkg/batch"
)

func TestGroupIdent(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  string
	}{
		"spaces":     {input: "Apollo Beach Campus", want: "ApolloBeachCampus"},
		"diacritics": {input: "Brandon Español", want: "BrandonEspanol"},
		"accents":    {input: "Café  Élan", want: "CafeElan"},
		"empty":      {input: "", want: ""},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, batch.GroupIdent(tc.input))
		})
	}
}

func TestOutputName(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input  string
		group  string
		suffix string
		want   string
	}{
		"no group":     {input: "/sets/Sunday.als", suffix: "_routed", want: "Sunday_routed.als"},
		"group":        {input: "Sunday.als", group: "Riverview Campus", suffix: "_routed", want: "Sunday_RiverviewCampus_routed.als"},
		"upper ext":    {input: "Song.ALS", suffix: "_routed", want: "Song_routed.als"},
		"dots in name": {input: "v1.2 Song.als", suffix: "_out", want: "v1.2 Song_out.als"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, batch.OutputName(tc.input, tc.group, tc.suffix))
		})
	}
}

func TestIsOutput(t *testing.T) {
	t.Parallel()

	assert.True(t, batch.IsOutput("Song_routed.als", "_routed"))
	assert.True(t, batch.IsOutput("dir/Song_North_routed_3.als", "_routed"))
	assert.False(t, batch.IsOutput("Song.als", "_routed"))
	assert.False(t, batch.IsOutput("Song_2.als", "_routed"))
	assert.False(t, batch.IsOutput("Song_routed.als", ""))
}

func TestIsProject(t *testing.T) {
	t.Parallel()

	assert.True(t, batch.IsProject("a.als"))
	assert.True(t, batch.IsProject("a.ALS"))
	assert.False(t, batch.IsProject("a.als.bak"))
	assert.False(t, batch.IsProject("a.wav"))
}
