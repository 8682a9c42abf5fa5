package transform

import (
	"fmt"
	"strings"
)

// MutePolicy selects how the speaker state of resolved tracks is written.
type MutePolicy string

const (
	// MuteExplicit mutes tracks with a mute directive and unmutes every other
	// resolved track.
	MuteExplicit MutePolicy = "explicit"
	// MuteOnly mutes tracks with a mute directive and leaves the speaker
	// state of other tracks as found.
	MuteOnly MutePolicy = "muteOnly"
)

// VolumePolicy selects the baseline a decibel adjustment is applied to.
type VolumePolicy string

const (
	// VolumeCompound adds the adjustment to the current volume, so repeated
	// runs attenuate further.
	VolumeCompound VolumePolicy = "compound"
	// VolumeReset applies the adjustment to the default volume, so repeated
	// runs produce the same value.
	VolumeReset VolumePolicy = "reset"
)

// AllMutePolicies lists the valid [MutePolicy] values.
var AllMutePolicies = []string{string(MuteExplicit), string(MuteOnly)}

// AllVolumePolicies lists the valid [VolumePolicy] values.
var AllVolumePolicies = []string{string(VolumeCompound), string(VolumeReset)}

// ParseMutePolicy parses a [MutePolicy]. Empty selects [MuteExplicit].
func ParseMutePolicy(s string) (MutePolicy, error) {
	for _, p := range []MutePolicy{MuteExplicit, MuteOnly} {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	if s == "" {
		return MuteExplicit, nil
	}

	return "", fmt.Errorf("unknown mute policy %q, want one of %q", s, AllMutePolicies)
}

// ParseVolumePolicy parses a [VolumePolicy]. Empty selects [VolumeCompound].
func ParseVolumePolicy(s string) (VolumePolicy, error) {
	for _, p := range []VolumePolicy{VolumeCompound, VolumeReset} {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	if s == "" {
		return VolumeCompound, nil
	}

	return "", fmt.Errorf("unknown volume policy %q, want one of %q", s, AllVolumePolicies)
}
