package rules

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/macropower/alsroute/pkg/channel"
)

// MuteInstruction is the instruction that mutes a track.
const MuteInstruction = "mute"

// ErrInvalidInstruction indicates an instruction that is neither the mute
// marker, a number, nor a known alias.
var ErrInvalidInstruction = errors.New("invalid instruction")

// Directive describes the edits to apply to one track.
type Directive struct {
	// Adjust is the decibel offset to apply to the track volume, if any.
	Adjust *float64
	// Channel is the output channel token. Empty leaves routing untouched.
	Channel string
	// Rule names the rule that produced the directive.
	Rule string
	Mute bool
}

// Decibels returns the volume adjustment, or zero when there is none.
func (d Directive) Decibels() float64 {
	if d.Adjust == nil {
		return 0
	}

	return *d.Adjust
}

// HasAdjust reports whether the directive carries a non-zero volume
// adjustment.
func (d Directive) HasAdjust() bool {
	return d.Decibels() != 0
}

// Source resolves track names to directives.
type Source interface {
	// Resolve returns the directive for the named track of the given kind
	// (AudioTrack, MidiTrack or GroupTrack). ok is false when no rule
	// applies. A non-nil error is a warning: the directive is still usable.
	Resolve(name, kind string) (d Directive, ok bool, err error)
	// Channels returns the map used to resolve directive channel tokens.
	Channels() *channel.Map
}

// Aliases maps instruction words, such as "turn down", to decibel offsets.
type Aliases map[string]float64

// DefaultAliases returns the built-in instruction aliases.
func DefaultAliases() Aliases {
	return Aliases{"turn down": -10}
}

// ParseInstruction interprets an instruction cell. It returns mute for the
// mute marker and a decibel offset for numbers and aliases. Empty instructions
// yield neither. Unknown instructions return [ErrInvalidInstruction].
func ParseInstruction(instruction string, aliases Aliases) (mute bool, adjust *float64, err error) {
	s := strings.TrimSpace(instruction)
	if s == "" {
		return false, nil, nil
	}

	if strings.EqualFold(s, MuteInstruction) {
		return true, nil, nil
	}

	if v, ok := parseDecibels(s); ok {
		return false, &v, nil
	}

	for word, db := range aliases {
		if strings.EqualFold(strings.TrimSpace(word), s) {
			return false, &db, nil
		}
	}

	return false, nil, fmt.Errorf("%w: %q", ErrInvalidInstruction, instruction)
}

// parseDecibels accepts "-10", "-10dB" and "-10 dB".
func parseDecibels(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(s), "db"))

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}
