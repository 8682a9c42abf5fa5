package configs

import (
	"github.com/macropower/alsroute/pkg/rules"
)

// Group is a destination group defined by a static rule table.
type Group struct {
	// Routes maps a channel token to the track names routed to it.
	Routes map[string][]string `json:"routes,omitempty" jsonschema:"title=Routes"`
	// Attenuate maps a track name to a decibel offset.
	Attenuate map[string]float64 `json:"attenuate,omitempty" jsonschema:"title=Attenuate"`
	// Mute lists track names to mute.
	Mute []string `json:"mute,omitempty" jsonschema:"title=Mute"`
	// Patterns apply to tracks not listed above, first match wins.
	Patterns []*Pattern `json:"patterns,omitempty" jsonschema:"title=Patterns"`
}

// Pattern is a rule selected by a CEL expression over the track name and kind.
type Pattern struct {
	// Adjust is a decibel offset.
	Adjust *float64 `json:"adjust,omitempty" jsonschema:"title=Adjust"`
	// Match is a CEL expression over `name` and `kind`.
	Match string `json:"match" jsonschema:"title=Match,required,minLength=1"`
	// Channel is the channel token to route to.
	Channel string `json:"channel,omitempty" jsonschema:"title=Channel"`
	// Mute mutes matching tracks.
	Mute bool `json:"mute,omitempty" jsonschema:"title=Mute"`
}

// Table converts the group to a [rules.StaticTable].
func (g *Group) Table() rules.StaticTable {
	t := rules.StaticTable{
		Routes:    g.Routes,
		Attenuate: g.Attenuate,
		Mute:      g.Mute,
	}
	for _, p := range g.Patterns {
		if p == nil {
			continue
		}

		t.Patterns = append(t.Patterns, rules.Pattern{
			Adjust:  p.Adjust,
			Match:   p.Match,
			Channel: p.Channel,
			Mute:    p.Mute,
		})
	}

	return t
}

// Source compiles the group into a [rules.StaticSource] using the static
// channel map.
func (g *Group) Source() (*rules.StaticSource, error) {
	//nolint:wrapcheck // Errors already carry the pattern index.
	return rules.NewStaticSource(g.Table())
}
