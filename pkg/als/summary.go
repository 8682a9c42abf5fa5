package als

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/macropower/alsroute/pkg/gain"
)

// SetSummary describes a Live set.
type SetSummary struct {
	File    string         `json:"file"              jsonschema:"base name of the set file"`
	Creator string         `json:"creator,omitempty" jsonschema:"Live version that saved the set"`
	Tracks  []TrackSummary `json:"tracks"            jsonschema:"tracks grouped by kind"`
}

// TrackSummary describes one track of a set. Fields of missing elements are
// left empty.
type TrackSummary struct {
	Muted    *bool    `json:"muted,omitempty"    jsonschema:"whether the track speaker is off"`
	Volume   *float64 `json:"volume,omitempty"   jsonschema:"linear mixer volume"`
	VolumeDB *float64 `json:"volumeDb,omitempty" jsonschema:"mixer volume in decibels"`
	Kind     string   `json:"kind"               jsonschema:"track element tag"`
	Name     string   `json:"name"               jsonschema:"effective track name"`
	Target   string   `json:"target,omitempty"   jsonschema:"output routing target"`
	Channel  string   `json:"channel,omitempty"  jsonschema:"output routing channel label"`
	Samples  []string `json:"samples,omitempty"  jsonschema:"paths of referenced samples"`
}

// SummarizeFile reads and summarizes the set at path.
func SummarizeFile(path string) (*SetSummary, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: Path is user input.
	if err != nil {
		return nil, fmt.Errorf("read set: %w", err)
	}

	doc, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s, err := doc.Summarize(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Summarize describes the tracks of d. file names the set in the result.
func (d *Document) Summarize(file string) (*SetSummary, error) {
	s := &SetSummary{
		File:    file,
		Creator: d.Attr("Creator"),
		Tracks:  []TrackSummary{},
	}

	for _, track := range d.Tracks() {
		ts, err := track.Summarize()
		if err != nil {
			return nil, err
		}

		s.Tracks = append(s.Tracks, ts)
	}

	return s, nil
}

// Summarize describes the routing, mixer state and samples of t.
func (t *Track) Summarize() (TrackSummary, error) {
	name, _ := t.Name()
	ts := TrackSummary{Kind: t.Kind(), Name: name}

	if target, label, ok := t.Output(); ok {
		ts.Target, ts.Channel = target, label
	}

	if on, ok := t.Speaker(); ok {
		muted := !on
		ts.Muted = &muted
	}

	v, ok, err := t.Volume()
	if err != nil {
		return TrackSummary{}, fmt.Errorf("track %q: %w", name, err)
	}
	if ok {
		db := gain.ToDecibels(v)
		ts.Volume, ts.VolumeDB = &v, &db
	}

	for _, s := range t.Samples() {
		ts.Samples = append(ts.Samples, s.Path)
	}

	return ts, nil
}
