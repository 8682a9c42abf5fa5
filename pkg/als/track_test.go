package als_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/alsroute/pkg/als"
	"github.com/macropower/alsroute/pkg/als/alstest"
	"github.com/macropower/alsroute/pkg/gain"
)

func parseOne(t *testing.T, tr alstest.Track) (*als.Document, *als.Track) {
	t.Helper()

	doc, err := als.Parse(alstest.XML(tr))
	require.NoError(t, err)

	tracks := doc.Tracks()
	require.Len(t, tracks, 1)

	return doc, tracks[0]
}

func TestTrack_Name(t *testing.T) {
	t.Parallel()

	_, tr := parseOne(t, alstest.Named("E Guitar 1"))
	name, ok := tr.Name()
	require.True(t, ok)
	assert.Equal(t, "E Guitar 1", name)

	_, tr = parseOne(t, alstest.Track{})
	_, ok = tr.Name()
	assert.False(t, ok)
}

func TestTrack_SetOutputCreates(t *testing.T) {
	t.Parallel()

	doc, tr := parseOne(t, alstest.Named("BASS"))

	_, _, ok := tr.Output()
	require.False(t, ok)

	tr.SetOutput("AudioOut/External/M1", "2")

	target, label, ok := tr.Output()
	require.True(t, ok)
	assert.Equal(t, "AudioOut/External/M1", target)
	assert.Equal(t, "2", label)

	out, err := doc.XML()
	require.NoError(t, err)

	el := alstest.FindTrack(t, alstest.Doc(t, out), "BASS")
	assert.Equal(t, als.ExternalOutLabel, alstest.Value(el, "DeviceChain/AudioOutputRouting/UpperDisplayString"))
	assert.Equal(t, 1, alstest.Count(el, "DeviceChain/AudioOutputRouting/MpeSettings"))
}

func TestTrack_SetOutputReuses(t *testing.T) {
	t.Parallel()

	doc, tr := parseOne(t, alstest.Named("KEYS").WithDeviceChain(
		`<AudioOutputRouting>` +
			`<Target Value="AudioOut/Master" />` +
			`<UpperDisplayString Value="Master" />` +
			`<LowerDisplayString Value="" />` +
			`<MpeSettings><ZoneType Value="0" />text</MpeSettings>` +
			`</AudioOutputRouting>` +
			`<Mixer><Speaker><Manual Value="true" /></Speaker></Mixer>`,
	))

	for range 2 {
		tr.SetOutput("AudioOut/External/S3", "7/8")
	}

	out, err := doc.XML()
	require.NoError(t, err)

	el := alstest.FindTrack(t, alstest.Doc(t, out), "KEYS")
	assert.Equal(t, 1, alstest.Count(el, "DeviceChain"))
	assert.Equal(t, 1, alstest.Count(el, "DeviceChain/AudioOutputRouting"))
	assert.Equal(t, 1, alstest.Count(el, "DeviceChain/AudioOutputRouting/Target"))
	assert.Equal(t, 1, alstest.Count(el, "DeviceChain/Mixer"))
	assert.Equal(t, "AudioOut/External/S3", alstest.Value(el, "DeviceChain/AudioOutputRouting/Target"))

	mpe := el.FindElement("DeviceChain/AudioOutputRouting/MpeSettings")
	require.NotNil(t, mpe)
	assert.Empty(t, mpe.ChildElements())
	assert.Empty(t, mpe.Text())
}

func TestTrack_Speaker(t *testing.T) {
	t.Parallel()

	_, tr := parseOne(t, alstest.Named("BASS"))

	_, ok := tr.Speaker()
	require.False(t, ok)

	tr.EnsureSpeaker()

	on, ok := tr.Speaker()
	require.True(t, ok)
	assert.True(t, on)

	tr.SetSpeaker(false)

	on, ok = tr.Speaker()
	require.True(t, ok)
	assert.False(t, on)
}

func TestTrack_Volume(t *testing.T) {
	t.Parallel()

	_, tr := parseOne(t, alstest.Named("CHOIR"))

	_, ok, err := tr.Volume()
	require.NoError(t, err)
	require.False(t, ok)

	v, err := tr.EnsureVolume()
	require.NoError(t, err)
	assert.InDelta(t, gain.DefaultLinear, v, 0)

	tr.SetVolume(0.5)

	v, ok, err = tr.Volume()
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 0)
}

func TestTrack_VolumeInvalid(t *testing.T) {
	t.Parallel()

	_, tr := parseOne(t, alstest.Named("CHOIR").WithDeviceChain(
		`<Mixer><Volume><Manual Value="loud" /></Volume></Mixer>`,
	))

	_, err := tr.EnsureVolume()
	require.ErrorIs(t, err, als.ErrInvalidValue)
}

func TestTrack_Samples(t *testing.T) {
	t.Parallel()

	_, tr := parseOne(t, alstest.Named("Stems").WithDeviceChain(
		`<MainSequencer><ClipSlotList>` +
			`<ClipSlot><ClipSlot><Value><AudioClip><SampleRef><FileRef>` +
			`<RelativePath Value="Samples/Click.wav" /><Path Value="/abs/Click.wav" />` +
			`</FileRef></SampleRef></AudioClip></Value></ClipSlot></ClipSlot>` +
			`<ClipSlot><ClipSlot><Value><AudioClip><SampleRef><FileRef>` +
			`<RelativePath Value="" /><Path Value="/abs/Pad.wav" />` +
			`</FileRef></SampleRef></AudioClip></Value></ClipSlot></ClipSlot>` +
			`<ClipSlot><ClipSlot><Value><AudioClip><SampleRef><FileRef>` +
			`<RelativePath Value="Samples/Click.wav" />` +
			`</FileRef></SampleRef></AudioClip></Value></ClipSlot></ClipSlot>` +
			`</ClipSlotList></MainSequencer>`,
	))

	assert.Equal(t, []als.Sample{
		{Path: "Samples/Click.wav", Relative: true},
		{Path: "/abs/Pad.wav"},
	}, tr.Samples())
}
