package transform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/macropower/alsroute/pkg/als"
	"github.com/macropower/alsroute/pkg/gain"
	"github.com/macropower/alsroute/pkg/log"
	"github.com/macropower/alsroute/pkg/rules"
)

// Change records the edits applied to one track.
type Change struct {
	// Adjust is the applied decibel offset, if any.
	Adjust *float64 `json:"adjustDb,omitempty" yaml:"adjustDb,omitempty"`
	Name   string   `json:"name" yaml:"name"`
	Kind   string   `json:"kind" yaml:"kind"`
	Rule   string   `json:"rule" yaml:"rule"`
	// Target and Label are set when the track was routed.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	// Volume is the resulting linear volume when it was changed.
	Volume float64 `json:"volume,omitempty" yaml:"volume,omitempty"`
	Muted  bool    `json:"muted" yaml:"muted"`
}

// Report summarizes a transform. Warnings are non-fatal: the affected track
// or edit was skipped.
type Report struct {
	Changes  []Change `json:"changes" yaml:"changes"`
	Warnings []error  `json:"-" yaml:"-"`
	Skipped  int      `json:"skipped" yaml:"skipped"`
	Tracks   int      `json:"tracks" yaml:"tracks"`
}

func (r *Report) warn(err error) {
	r.Warnings = append(r.Warnings, err)
}

// Transformer applies a [rules.Source] to documents.
type Transformer struct {
	source rules.Source
	mute   MutePolicy
	volume VolumePolicy
}

// Opt configures a [Transformer].
type Opt func(*Transformer)

// WithMutePolicy sets the [MutePolicy]. The default is [MuteExplicit].
func WithMutePolicy(p MutePolicy) Opt {
	return func(t *Transformer) {
		t.mute = p
	}
}

// WithVolumePolicy sets the [VolumePolicy]. The default is [VolumeCompound].
func WithVolumePolicy(p VolumePolicy) Opt {
	return func(t *Transformer) {
		t.volume = p
	}
}

// New creates a new [Transformer].
func New(source rules.Source, opts ...Opt) *Transformer {
	t := &Transformer{
		source: source,
		mute:   MuteExplicit,
		volume: VolumeCompound,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Apply edits every resolved track of doc. It returns an error, leaving doc
// partially edited, only when a track's existing values cannot be read.
func (t *Transformer) Apply(ctx context.Context, doc *als.Document) (*Report, error) {
	logger := log.WithContext(ctx)
	report := &Report{}

	for _, track := range doc.Tracks() {
		report.Tracks++

		name, ok := track.Name()
		if !ok || strings.TrimSpace(name) == "" {
			logger.DebugContext(ctx, "skip unnamed track", slog.String("kind", track.Kind()))
			report.Skipped++

			continue
		}

		tl := logger.With(slog.String("track", name), slog.String("kind", track.Kind()))

		d, ok, err := t.source.Resolve(name, track.Kind())
		if err != nil {
			tl.WarnContext(ctx, "resolve rule", slog.Any("err", err))
			report.warn(err)
		}
		if !ok {
			report.Skipped++

			continue
		}

		change, err := t.applyTrack(track, d)
		if err != nil {
			if change == nil {
				tl.WarnContext(ctx, "skip track", slog.Any("err", err))
				report.warn(fmt.Errorf("track %q: %w", name, err))
				report.Skipped++

				continue
			}

			return report, fmt.Errorf("track %q: %w", name, err)
		}

		tl.DebugContext(ctx, "updated track",
			slog.String("rule", change.Rule),
			slog.String("target", change.Target),
			slog.Bool("muted", change.Muted),
		)

		change.Name = name
		report.Changes = append(report.Changes, *change)
	}

	return report, nil
}

// applyTrack applies d to track. A nil change with an error means the track
// was skipped untouched; a non-nil change with an error means the edit failed.
func (t *Transformer) applyTrack(track *als.Track, d rules.Directive) (*Change, error) {
	change := &Change{Kind: track.Kind(), Rule: d.Rule}

	if d.Channel != "" {
		target, err := t.source.Channels().Lookup(d.Channel)
		if err != nil {
			return nil, err
		}

		track.SetOutput(target.Descriptor, target.Label)
		change.Target = target.Descriptor
		change.Label = target.Label
	}

	switch {
	case d.Mute:
		track.SetSpeaker(false)
	case t.mute == MuteOnly:
		track.EnsureSpeaker()
	default:
		track.SetSpeaker(true)
	}

	change.Muted = d.Mute

	if !d.HasAdjust() {
		return change, nil
	}

	current, err := track.EnsureVolume()
	if err != nil {
		return change, err
	}

	if t.volume == VolumeReset {
		current = gain.DefaultLinear
	}

	change.Volume = gain.Adjust(current, d.Decibels())
	change.Adjust = d.Adjust
	track.SetVolume(change.Volume)

	return change, nil
}
