// Package gain converts between linear gain values and decibels.
package gain

import "math"

// Ableton stores mixer volume as a linear gain. Unity (0 dB) is 1.0.
const (
	// DefaultLinear is the value Live writes for a freshly created track volume.
	DefaultLinear = 0.794328
	// DefaultValue is [DefaultLinear] as it appears in project XML.
	DefaultValue = "0.794328"
)

// ToDecibels returns 20*log10(linear), or negative infinity when linear is not
// positive.
func ToDecibels(linear float64) float64 {
	if linear > 0 {
		return 20 * math.Log10(linear)
	}

	return math.Inf(-1)
}

// ToLinear returns 10^(decibels/20). Non-finite input yields 0.
func ToLinear(decibels float64) float64 {
	if math.IsInf(decibels, 0) || math.IsNaN(decibels) {
		return 0
	}

	return math.Pow(10, decibels/20)
}

// Adjust applies a decibel offset to a linear gain value.
func Adjust(linear, decibels float64) float64 {
	return ToLinear(ToDecibels(linear) + decibels)
}
