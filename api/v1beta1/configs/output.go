package configs

import (
	"github.com/macropower/alsroute/pkg/batch"
	"github.com/macropower/alsroute/pkg/transform"
)

// Policy selects how mute and volume rules are written.
type Policy struct {
	// Mute is the mute policy.
	Mute string `json:"mute,omitempty" jsonschema:"title=Mute Policy,enum=explicit,enum=muteOnly"`
	// Volume is the volume policy.
	Volume string `json:"volume,omitempty" jsonschema:"title=Volume Policy,enum=compound,enum=reset"`
}

// EnsureDefaults initializes empty fields to their default values.
func (p *Policy) EnsureDefaults() {
	if p.Mute == "" {
		p.Mute = string(transform.MuteExplicit)
	}
	if p.Volume == "" {
		p.Volume = string(transform.VolumeCompound)
	}
}

// TransformOpts returns the [transform.Opt]s for the policy.
func (p *Policy) TransformOpts() ([]transform.Opt, error) {
	mute, err := transform.ParseMutePolicy(p.Mute)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already describes the value.
	}

	volume, err := transform.ParseVolumePolicy(p.Volume)
	if err != nil {
		return nil, err //nolint:wrapcheck // Already describes the value.
	}

	return []transform.Opt{
		transform.WithMutePolicy(mute),
		transform.WithVolumePolicy(volume),
	}, nil
}

// Output configures where routed projects are written.
type Output struct {
	// Suffix is appended to output file names.
	Suffix string `json:"suffix,omitempty" jsonschema:"title=Suffix,minLength=1"`
	// Dir is the output directory. Empty writes next to each input.
	Dir string `json:"dir,omitempty" jsonschema:"title=Directory"`
}

// EnsureDefaults initializes empty fields to their default values.
func (o *Output) EnsureDefaults() {
	if o.Suffix == "" {
		o.Suffix = batch.DefaultSuffix
	}
}
