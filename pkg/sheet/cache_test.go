package sheet_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/alsroute/pkg/sheet"
)

type countingLoader struct {
	err   error
	calls atomic.Int32
}

func (l *countingLoader) Load(_ context.Context) (*sheet.Table, error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}

	return &sheet.Table{Groups: []string{"Main"}}, nil
}

type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func TestCache(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(0, 0)}
	loader := &countingLoader{}
	cache := sheet.NewCache(loader, time.Minute, sheet.WithClock(clock.Now))

	first, err := cache.Load(t.Context())
	require.NoError(t, err)

	second, err := cache.Load(t.Context())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), loader.calls.Load())

	clock.Advance(2 * time.Minute)

	third, err := cache.Load(t.Context())
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, int32(2), loader.calls.Load())

	cache.Invalidate()

	_, err = cache.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int32(3), loader.calls.Load())
}

func TestCacheStaleOnFailure(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(0, 0)}
	loader := &countingLoader{}
	cache := sheet.NewCache(loader, time.Minute, sheet.WithClock(clock.Now))

	first, err := cache.Load(t.Context())
	require.NoError(t, err)

	loader.err = &sheet.LoadError{Kind: sheet.ErrTimeout, Source: "test", Err: errors.New("slow")}

	clock.Advance(2 * time.Minute)

	stale, err := cache.Load(t.Context())
	require.NoError(t, err)
	assert.Same(t, first, stale)
}

func TestCacheFailureWithoutTable(t *testing.T) {
	t.Parallel()

	loader := &countingLoader{
		err: &sheet.LoadError{Kind: sheet.ErrTransport, Source: "test", Err: errors.New("refused")},
	}
	cache := sheet.NewCache(loader, 0)

	_, err := cache.Load(t.Context())
	require.ErrorIs(t, err, sheet.ErrRuleSource)
	require.ErrorIs(t, err, sheet.ErrTransport)
}
