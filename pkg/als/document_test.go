package als_test

import (
	"bytes"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/alsroute/pkg/als"
	"github.com/macropower/alsroute/pkg/als/alstest"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   []byte
		wantErr bool
	}{
		"valid": {
			input: alstest.Set(t, alstest.Named("BASS")),
		},
		"not gzip": {
			input:   alstest.XML(alstest.Named("BASS")),
			wantErr: true,
		},
		"not xml": {
			input:   alstest.Gzip(t, []byte("hello")),
			wantErr: true,
		},
		"empty": {
			input:   []byte{},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc, err := als.Decode(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, als.ErrDecode)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Ableton", doc.Root())
			assert.Equal(t, "Ableton Live 11.3.4", doc.Attr("Creator"))
		})
	}
}

func TestDocument_Tracks(t *testing.T) {
	t.Parallel()

	doc, err := als.Parse(alstest.XML(
		alstest.Named("Group").WithKind(als.KindGroup),
		alstest.Named("Synth").WithKind(als.KindMIDI),
		alstest.Named("BASS"),
		alstest.Track{},
		alstest.Named("CLICK"),
	))
	require.NoError(t, err)

	var got []string
	for _, tr := range doc.Tracks() {
		name, ok := tr.Name()
		if !ok {
			name = "<none>"
		}

		got = append(got, tr.Kind()+":"+name)
	}

	assert.Equal(t, []string{
		"AudioTrack:BASS",
		"AudioTrack:<none>",
		"AudioTrack:CLICK",
		"MidiTrack:Synth",
		"GroupTrack:Group",
	}, got)
}

func TestDocument_RoundTrip(t *testing.T) {
	t.Parallel()

	input := alstest.XML(
		alstest.Named("BASS").WithDeviceChain(`<Mixer><Volume><Manual Value="1" /></Volume></Mixer>`),
	)

	doc, err := als.Parse(input)
	require.NoError(t, err)

	raw, err := doc.Encode()
	require.NoError(t, err)

	out := alstest.Gunzip(t, raw)
	assert.True(t, bytes.HasPrefix(out, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)))

	again, err := als.Decode(raw)
	require.NoError(t, err)

	xml, err := again.XML()
	require.NoError(t, err)
	assert.Equal(t, string(out), string(xml))
}

func TestDocument_RoundTripAttributeWhitespace(t *testing.T) {
	t.Parallel()

	input := []byte(`<Ableton><LiveSet><Annotation Value="line1&#10;line2&#9;tab &amp; more" /></LiveSet></Ableton>`)

	doc, err := als.Parse(input)
	require.NoError(t, err)

	out, err := doc.XML()
	require.NoError(t, err)
	assert.Contains(t, string(out), `Value="line1&#xA;line2&#x9;tab &amp; more"`)
	assert.NotContains(t, string(out), "line1\n")

	reread := etree.NewDocument()
	require.NoError(t, reread.ReadFromBytes(out))

	el := reread.FindElement("//Annotation")
	require.NotNil(t, el)
	assert.Equal(t, "line1\nline2\ttab & more", el.SelectAttrValue("Value", ""))
}

func TestDocument_AddsDeclaration(t *testing.T) {
	t.Parallel()

	doc, err := als.Parse([]byte(`<Ableton><LiveSet /></Ableton>`))
	require.NoError(t, err)

	out, err := doc.XML()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)), string(out))
	assert.Equal(t, 1, bytes.Count(out, []byte("<?xml")))
}

func TestCompress(t *testing.T) {
	t.Parallel()

	data := []byte("<Ableton />")

	raw, err := als.Compress(data)
	require.NoError(t, err)

	got, err := als.Decompress(raw)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}
