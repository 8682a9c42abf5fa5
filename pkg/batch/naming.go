package batch

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// Ext is the Live set file extension.
	Ext = ".als"
	// DefaultSuffix is appended to output file names.
	DefaultSuffix = "_routed"
)

// GroupIdent converts a destination group name to a file name fragment:
// whitespace is removed and diacritics are stripped, so "Apollo Beach
// Español" becomes "ApolloBeachEspanol".
func GroupIdent(group string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	s, _, err := transform.String(t, group)
	if err != nil {
		s = group
	}

	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}

		return r
	}, s)
}

// OutputName returns the output file name for input: the input's base name,
// then "_" and the group identifier when group is not empty, then suffix.
func OutputName(input, group, suffix string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	if ident := GroupIdent(group); ident != "" {
		stem += "_" + ident
	}

	return stem + suffix + Ext
}

// IsOutput reports whether name looks like a file written by a previous run,
// i.e. its stem ends with suffix, optionally followed by a "_<n>" collision
// counter.
func IsOutput(name, suffix string) bool {
	if suffix == "" {
		return false
	}

	base := filepath.Base(name)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	if i := strings.LastIndexByte(stem, '_'); i >= 0 && isDigits(stem[i+1:]) {
		if strings.HasSuffix(stem[:i], suffix) {
			return true
		}
	}

	return strings.HasSuffix(stem, suffix)
}

// IsProject reports whether name has the Live set extension.
func IsProject(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Ext)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
