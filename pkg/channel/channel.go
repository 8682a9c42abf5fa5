package channel

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

const (
	// Separator marks a stereo pair token, e.g. "5/6".
	Separator = "/"

	monoPrefix   = "AudioOut/External/M"
	stereoPrefix = "AudioOut/External/S"
)

var (
	// ErrUnknownChannel is returned when a token is not present in a [Map].
	ErrUnknownChannel = errors.New("unknown channel")
	// ErrMalformedToken is returned when a token cannot be assigned to a bus.
	ErrMalformedToken = errors.New("malformed channel token")
)

// Target is a resolved output routing destination.
type Target struct {
	// Descriptor is the routing target written to AudioOutputRouting/Target,
	// e.g. "AudioOut/External/S2".
	Descriptor string
	// Label is the text Live shows under the output, e.g. "5/6".
	Label string
}

// Mono returns the [Target] for the zero-based mono bus index.
func Mono(index int, label string) Target {
	return Target{Descriptor: monoPrefix + strconv.Itoa(index), Label: label}
}

// Stereo returns the [Target] for the one-based stereo pair index.
func Stereo(index int, label string) Target {
	return Target{Descriptor: stereoPrefix + strconv.Itoa(index), Label: label}
}

func (t Target) String() string {
	return fmt.Sprintf("%s (%s)", t.Descriptor, t.Label)
}

// Map resolves channel tokens to [Target]s. A Map is immutable once built and
// safe for concurrent use.
type Map struct {
	targets map[string]Target
}

// Static returns the fixed five-slot map used by static rule tables: one mono
// guide output, one mono bass output and three stereo pairs. "7/0" is kept as
// an alias of "7/8" for older tables.
func Static() *Map {
	return &Map{targets: map[string]Target{
		"1":   Mono(0, "1"),
		"2":   Mono(1, "2"),
		"3/4": Stereo(1, "3/4"),
		"5/6": Stereo(2, "5/6"),
		"7/8": Stereo(3, "7/8"),
		"7/0": Stereo(3, "7/8"),
	}}
}

// Derive builds a [Map] from every token observed in a rule table.
//
// Distinct tokens are sorted ascending (lexicographically). Tokens without a
// separator are mono and map to bus integer(token)-1. Tokens with a separator
// are stereo and are numbered sequentially from 1 in sorted order. Mono tokens
// that are not positive integers are dropped; each dropped token is reported in
// the returned warnings, which wrap [ErrMalformedToken].
func Derive(tokens []string) (*Map, []error) {
	distinct := map[string]struct{}{}
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		distinct[tok] = struct{}{}
	}

	sorted := slices.Sorted(maps.Keys(distinct))

	var (
		m        = &Map{targets: make(map[string]Target, len(sorted))}
		warnings []error
		stereo   int
	)

	for _, tok := range sorted {
		if strings.Contains(tok, Separator) {
			stereo++
			m.targets[tok] = Stereo(stereo, tok)

			continue
		}

		n, err := strconv.Atoi(tok)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%w: %q: %w", ErrMalformedToken, tok, err))
			continue
		}
		if n < 1 {
			warnings = append(warnings, fmt.Errorf("%w: %q: mono channels start at 1", ErrMalformedToken, tok))
			continue
		}

		m.targets[tok] = Mono(n-1, tok)
	}

	return m, warnings
}

// Resolve returns the [Target] for token.
func (m *Map) Resolve(token string) (Target, bool) {
	t, ok := m.targets[token]

	return t, ok
}

// Lookup is like [Map.Resolve] but returns an error wrapping
// [ErrUnknownChannel] when the token is not mapped.
func (m *Map) Lookup(token string) (Target, error) {
	t, ok := m.targets[token]
	if !ok {
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownChannel, token)
	}

	return t, nil
}

// Tokens returns the mapped tokens in ascending order.
func (m *Map) Tokens() []string {
	return slices.Sorted(maps.Keys(m.targets))
}

// Len returns the number of mapped tokens.
func (m *Map) Len() int {
	return len(m.targets)
}
