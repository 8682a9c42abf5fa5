package batch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/alsroute/pkg/als"
	"github.com/macropower/alsroute/pkg/als/alstest"
	"github.com/macropower/alsroute/pkg/batch"
	"github.com/macropower/alsroute/pkg/rules"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func staticFunc(t *testing.T) batch.SourceFunc {
	t.Helper()

	src := testSource(t)

	return func(context.Context) (rules.Source, error) {
		return src, nil
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	set := alstest.Set(t, alstest.Named("BASS"))

	writeFile(t, filepath.Join(dir, "a.als"), set)
	writeFile(t, filepath.Join(dir, "nested", "b.als"), set)
	writeFile(t, filepath.Join(dir, "a_routed.als"), set)
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("x"))

	files, skips, errs := batch.Discover([]string{
		dir,
		filepath.Join(dir, "notes.txt"),
		filepath.Join(dir, "a.als"),
		filepath.Join(dir, "missing.als"),
	}, "_routed")

	assert.Equal(t, []string{
		filepath.Join(dir, "a.als"),
		filepath.Join(dir, "nested", "b.als"),
	}, files)
	assert.Equal(t, []batch.Skip{
		{Path: filepath.Join(dir, "a_routed.als"), Reason: "already routed"},
		{Path: filepath.Join(dir, "notes.txt"), Reason: "not an .als file"},
	}, skips)
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], os.ErrNotExist)
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.als")
	bad := filepath.Join(dir, "bad.als")

	writeFile(t, good, alstest.Set(t, alstest.Named("BASS"), alstest.Named("CHOIR")))
	writeFile(t, bad, []byte("corrupt"))

	events := make(chan batch.Event, 16)

	r := batch.NewRunner(staticFunc(t), batch.WithGroup("North"), batch.WithJobs(2))
	r.Subscribe(events)

	summary, err := r.Run(t.Context(), []string{dir})
	require.NoError(t, err)

	require.Len(t, summary.Results, 1, spew.Sdump(summary))
	require.Len(t, summary.Failed, 1)
	require.Error(t, summary.Err())

	assert.Equal(t, bad, summary.Failed[0].Path)
	require.ErrorIs(t, summary.Failed[0], als.ErrDecode)

	out := filepath.Join(dir, "good_North_routed.als")
	assert.Equal(t, out, summary.Results[0].Output)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	doc, err := als.Decode(raw)
	require.NoError(t, err)
	assert.Len(t, doc.Tracks(), 2)

	_, err = os.Stat(filepath.Join(dir, "bad_North_routed.als"))
	require.ErrorIs(t, err, os.ErrNotExist, "no output for failed file")

	close(events)

	var done, failed int
	for evt := range events {
		switch evt.(type) {
		case batch.EventDone:
			done++
		case batch.EventFail:
			failed++
		}
	}

	assert.Equal(t, 1, done)
	assert.Equal(t, 1, failed)

	summary, err = batch.NewRunner(staticFunc(t), batch.WithGroup("North")).Run(t.Context(), []string{dir})
	require.NoError(t, err)
	assert.Len(t, summary.Skipped, 1, "outputs are not re-processed")
	assert.Equal(t, filepath.Join(dir, "good_North_routed_1.als"), summary.Results[0].Output)
}

func TestRunner_DryRunAndOutputDir(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	out := t.TempDir()

	writeFile(t, filepath.Join(in, "song.als"), alstest.Set(t, alstest.Named("BASS")))

	r := batch.NewRunner(staticFunc(t), batch.WithOutputDir(out), batch.WithDryRun(true))

	summary, err := r.Run(t.Context(), []string{filepath.Join(in, "song.als")})
	require.NoError(t, err)
	require.NoError(t, summary.Err())
	require.Len(t, summary.Results, 1)
	assert.Equal(t, filepath.Join(out, "song_routed.als"), summary.Results[0].Output)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunner_SourceError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "song.als"), alstest.Set(t, alstest.Named("BASS")))

	errNoRules := errors.New("no rules")
	r := batch.NewRunner(func(context.Context) (rules.Source, error) {
		return nil, errNoRules
	})

	_, err := r.Run(t.Context(), []string{dir})
	require.ErrorIs(t, err, errNoRules)
}

func TestRunner_Watch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	events := make(chan batch.Event, 16)

	r := batch.NewRunner(staticFunc(t), batch.WithDebounce(50*time.Millisecond))
	r.Subscribe(events)

	ctx, cancel := context.WithCancel(t.Context())

	done := make(chan error, 1)
	go func() {
		done <- r.Watch(ctx, []string{dir})
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(dir, "live.als"), alstest.Set(t, alstest.Named("BASS")))

	timeout := time.After(5 * time.Second)

	for {
		select {
		case evt := <-events:
			if d, ok := evt.(batch.EventDone); ok {
				assert.Equal(t, filepath.Join(dir, "live_routed.als"), d.Result.Output)
				cancel()
				require.NoError(t, <-done)

				return
			}
		case <-timeout:
			cancel()
			t.Fatal("timed out waiting for watched file to be processed")
		}
	}
}
