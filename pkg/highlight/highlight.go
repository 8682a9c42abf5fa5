// Package highlight colors YAML, XML and unified diffs for terminal output.
package highlight

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/muesli/termenv"
)

// Languages understood by [New].
const (
	YAML = "YAML"
	XML  = "XML"
	Diff = "Diff"
)

// Highlighter renders text of one language with a chroma style.
type Highlighter struct {
	lexer     chroma.Lexer
	formatter chroma.Formatter
	style     *chroma.Style
}

// Opt configures a [Highlighter].
type Opt func(*Highlighter)

// WithStyle selects a chroma style by name. Unknown names use the fallback
// style.
func WithStyle(name string) Opt {
	return func(h *Highlighter) {
		s := styles.Get(name)
		if s == nil {
			s = styles.Fallback
		}

		h.style = s
	}
}

// New creates a [Highlighter] for language. The formatter follows profile, so
// [termenv.Ascii] output is left uncolored.
func New(language string, profile termenv.Profile, opts ...Opt) *Highlighter {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}

	formatterName := "noop"
	switch profile {
	case termenv.TrueColor:
		formatterName = "terminal16m"
	case termenv.ANSI256:
		formatterName = "terminal256"
	case termenv.ANSI:
		formatterName = "terminal8"
	case termenv.Ascii:
	}

	h := &Highlighter{
		lexer:     chroma.Coalesce(lexer),
		formatter: formatters.Get(formatterName),
		style:     styles.Get("github-dark"),
	}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Render returns text with color escapes added.
func (h *Highlighter) Render(text string) (string, error) {
	iterator, err := h.lexer.Tokenise(nil, text)
	if err != nil {
		return "", fmt.Errorf("lexer tokenize: %w", err)
	}

	buf := &bytes.Buffer{}

	err = h.formatter.Format(buf, h.style, iterator)
	if err != nil {
		return "", fmt.Errorf("format: %w", err)
	}

	return buf.String(), nil
}
