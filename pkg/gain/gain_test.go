package gain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/macropower/alsroute/pkg/gain"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for _, x := range []float64{1e-6, 0.001, 0.1, 0.3162, 0.5, gain.DefaultLinear, 1, 2, 3.5, 7.25, 10} {
		got := gain.ToLinear(gain.ToDecibels(x))
		assert.InEpsilon(t, x, got, 1e-9, "x=%v", x)
	}
}

func TestToDecibels(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in   float64
		want float64
	}{
		"unity":    {in: 1, want: 0},
		"ten":      {in: 10, want: 20},
		"tenth":    {in: 0.1, want: -20},
		"zero":     {in: 0, want: math.Inf(-1)},
		"negative": {in: -0.5, want: math.Inf(-1)},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := gain.ToDecibels(tc.in)
			if math.IsInf(tc.want, -1) {
				assert.True(t, math.IsInf(got, -1))
				return
			}

			assert.InDelta(t, tc.want, got, 1e-12)
		})
	}
}

func TestToLinear(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, gain.ToLinear(math.Inf(-1)))
	assert.Equal(t, 0.0, gain.ToLinear(math.NaN()))
	assert.InDelta(t, 1.0, gain.ToLinear(0), 1e-12)
	assert.InDelta(t, 0.31622776601683794, gain.ToLinear(-10), 1e-12)
}

func TestAdjust(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, gain.ToLinear(-10), gain.Adjust(1.0, -10), 1e-12)
	assert.Equal(t, 0.0, gain.Adjust(0, -10))
	assert.InDelta(t, gain.DefaultLinear, gain.Adjust(gain.DefaultLinear, 0), 1e-12)
}
