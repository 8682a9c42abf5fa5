package channel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/alsroute/pkg/channel"
)

func TestStatic(t *testing.T) {
	t.Parallel()

	m := channel.Static()

	tcs := map[string]channel.Target{
		"1":   {Descriptor: "AudioOut/External/M0", Label: "1"},
		"2":   {Descriptor: "AudioOut/External/M1", Label: "2"},
		"3/4": {Descriptor: "AudioOut/External/S1", Label: "3/4"},
		"5/6": {Descriptor: "AudioOut/External/S2", Label: "5/6"},
		"7/8": {Descriptor: "AudioOut/External/S3", Label: "7/8"},
		"7/0": {Descriptor: "AudioOut/External/S3", Label: "7/8"},
	}

	for token, want := range tcs {
		t.Run(token, func(t *testing.T) {
			t.Parallel()

			got, ok := m.Resolve(token)
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}

	_, ok := m.Resolve("9/9")
	assert.False(t, ok)
}

func TestDerive(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		want     map[string]string
		tokens   []string
		absent   []string
		warnings int
	}{
		"mono and stereo": {
			tokens: []string{"2", "1", "5/6", "3/4"},
			want: map[string]string{
				"1":   "AudioOut/External/M0",
				"2":   "AudioOut/External/M1",
				"3/4": "AudioOut/External/S1",
				"5/6": "AudioOut/External/S2",
			},
		},
		"duplicates and whitespace": {
			tokens: []string{" 1", "1", "", "7/8", "7/8 "},
			want: map[string]string{
				"1":   "AudioOut/External/M0",
				"7/8": "AudioOut/External/S1",
			},
		},
		"malformed mono dropped": {
			tokens:   []string{"x", "0", "3", "3/4"},
			want:     map[string]string{"3": "AudioOut/External/M2", "3/4": "AudioOut/External/S1"},
			absent:   []string{"x", "0"},
			warnings: 2,
		},
		"mono below one dropped": {
			tokens:   []string{"-1", "0", "1"},
			want:     map[string]string{"1": "AudioOut/External/M0"},
			absent:   []string{"-1", "0"},
			warnings: 2,
		},
		"empty": {
			want: map[string]string{},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			m, warnings := channel.Derive(tc.tokens)
			require.Len(t, warnings, tc.warnings)
			for _, w := range warnings {
				require.ErrorIs(t, w, channel.ErrMalformedToken)
			}

			assert.Equal(t, len(tc.want), m.Len())
			for token, desc := range tc.want {
				got, ok := m.Resolve(token)
				require.True(t, ok, token)
				assert.Equal(t, desc, got.Descriptor)
				assert.Equal(t, token, got.Label)
			}
			for _, token := range tc.absent {
				_, ok := m.Resolve(token)
				assert.False(t, ok, token)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	_, err := channel.Static().Lookup("9/9")
	require.ErrorIs(t, err, channel.ErrUnknownChannel)

	got, err := channel.Static().Lookup("2")
	require.NoError(t, err)
	assert.Equal(t, "AudioOut/External/M1 (2)", got.String())
}

func TestTokens(t *testing.T) {
	t.Parallel()

	m, _ := channel.Derive([]string{"5/6", "1", "3/4"})
	assert.Equal(t, []string{"1", "3/4", "5/6"}, m.Tokens())
}
