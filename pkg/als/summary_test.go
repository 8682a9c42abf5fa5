package als_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/alsroute/pkg/als"
	"github.com/macropower/alsroute/pkg/als/alstest"
)

func TestSummarizeFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "Sunday.als")
	require.NoError(t, os.WriteFile(path, alstest.Set(t,
		alstest.Named("BASS").WithDeviceChain(
			`<AudioOutputRouting><Target Value="AudioOut/External/M1" /><LowerDisplayString Value="2" /></AudioOutputRouting>`+
				`<Mixer><Speaker><Manual Value="true" /></Speaker><Volume><Manual Value="0.316228" /></Volume></Mixer>`,
		),
		alstest.Named("Click").WithKind(als.KindMIDI),
	), 0o600))

	got, err := als.SummarizeFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Sunday.als", got.File)
	require.Len(t, got.Tracks, 2)

	bass := got.Tracks[0]
	assert.Equal(t, "AudioTrack", bass.Kind)
	assert.Equal(t, "2", bass.Channel)
	require.NotNil(t, bass.Muted)
	assert.False(t, *bass.Muted)
	require.NotNil(t, bass.VolumeDB)
	assert.InDelta(t, -10.0, *bass.VolumeDB, 1e-4)

	click := got.Tracks[1]
	assert.Equal(t, als.KindMIDI, click.Kind)
	assert.Nil(t, click.Volume)
	assert.Empty(t, click.Target)
}

func TestSummarizeFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := als.SummarizeFile(filepath.Join(dir, "missing.als"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.als")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o600))

	_, err = als.SummarizeFile(bad)
	require.ErrorIs(t, err, als.ErrDecode)

	volume := filepath.Join(dir, "volume.als")
	require.NoError(t, os.WriteFile(volume, alstest.Set(t,
		alstest.Named("VOX").WithDeviceChain(`<Mixer><Volume><Manual Value="loud" /></Volume></Mixer>`),
	), 0o600))

	_, err = als.SummarizeFile(volume)
	require.ErrorIs(t, err, als.ErrInvalidValue)
}
