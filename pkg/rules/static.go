package rules

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/macropower/alsroute/pkg/channel"
	"github.com/macropower/alsroute/pkg/expr"
)

// StaticTable is a fixed keyword rule table. Track names are matched
// case-insensitively after trimming.
type StaticTable struct {
	// Routes maps a channel token to the track names routed to it.
	Routes map[string][]string
	// Attenuate maps a track name to a decibel offset.
	Attenuate map[string]float64
	// Mute lists muted track names.
	Mute []string
	// Patterns are consulted in order for names not listed above.
	Patterns []Pattern
}

// Pattern is a rule that applies to every track whose name and kind satisfy a
// CEL expression, e.g. `baseName(fold(name)) == "GUITAR"`. The name is
// passed as written; use fold to compare case-insensitively.
type Pattern struct {
	Adjust  *float64
	Match   string
	Channel string
	Mute    bool
}

type compiledPattern struct {
	matcher *expr.Matcher
	Pattern
}

// StaticSource is a [Source] backed by a [StaticTable].
type StaticSource struct {
	channels  *channel.Map
	routes    map[string]string
	attenuate map[string]float64
	mute      map[string]bool
	patterns  []compiledPattern
}

// StaticOpt configures a [StaticSource].
type StaticOpt func(*StaticSource)

// WithChannels sets the channel map. The default is [channel.Static].
func WithChannels(m *channel.Map) StaticOpt {
	return func(s *StaticSource) {
		s.channels = m
	}
}

// NewStaticSource creates a new [StaticSource]. When a name is listed under
// more than one channel, the channel that sorts last wins.
func NewStaticSource(table StaticTable, opts ...StaticOpt) (*StaticSource, error) {
	s := &StaticSource{
		channels:  channel.Static(),
		routes:    map[string]string{},
		attenuate: make(map[string]float64, len(table.Attenuate)),
		mute:      make(map[string]bool, len(table.Mute)),
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, token := range slices.Sorted(maps.Keys(table.Routes)) {
		for _, name := range table.Routes[token] {
			s.routes[fold(name)] = strings.TrimSpace(token)
		}
	}

	for name, db := range table.Attenuate {
		s.attenuate[fold(name)] = db
	}

	for _, name := range table.Mute {
		s.mute[fold(name)] = true
	}

	for i, p := range table.Patterns {
		m, err := expr.NewMatcher(p.Match)
		if err != nil {
			return nil, fmt.Errorf("pattern %d: %w", i, err)
		}

		s.patterns = append(s.patterns, compiledPattern{Pattern: p, matcher: m})
	}

	return s, nil
}

// Channels implements [Source].
func (s *StaticSource) Channels() *channel.Map {
	return s.channels
}

// Resolve implements [Source].
func (s *StaticSource) Resolve(name, kind string) (Directive, bool, error) {
	key := fold(name)
	if key == "" {
		return Directive{}, false, nil
	}

	token, routed := s.routes[key]
	db, attenuated := s.attenuate[key]
	muted := s.mute[key]

	if routed || attenuated || muted {
		d := Directive{Channel: token, Mute: muted, Rule: "static"}
		if attenuated {
			d.Adjust = &db
		}

		return d, true, nil
	}

	for _, p := range s.patterns {
		ok, err := p.matcher.Match(name, kind)
		if err != nil {
			return Directive{}, false, fmt.Errorf("pattern %s: %w", p.matcher, err)
		}
		if ok {
			return Directive{
				Channel: p.Channel,
				Mute:    p.Mute,
				Adjust:  p.Adjust,
				Rule:    "pattern: " + p.Match,
			}, true, nil
		}
	}

	return Directive{}, false, nil
}

func fold(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
