package yaml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/printer"
	"github.com/goccy/go-yaml/token"
)

// NewPathBuilder returns a builder for [yaml.Path] values.
func NewPathBuilder() *yaml.PathBuilder {
	return &yaml.PathBuilder{}
}

// Error is a YAML error located by a token or a path. When the source is
// known, the message includes the surrounding lines.
type Error struct {
	Err     error
	Path    *yaml.Path
	Token   *token.Token
	Source  []byte
	Colored bool
}

// ErrorOpt configures an [Error].
type ErrorOpt func(e *Error)

// NewError creates a new [Error].
func NewError(err error, opts ...ErrorOpt) *Error {
	e := &Error{Err: err}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// WithPath locates the error by path.
func WithPath(path *yaml.Path) ErrorOpt {
	return func(e *Error) {
		e.Path = path
	}
}

// WithToken locates the error by token.
func WithToken(tk *token.Token) ErrorOpt {
	return func(e *Error) {
		e.Token = tk
	}
}

// WithSource sets the document the error refers to.
func WithSource(source []byte) ErrorOpt {
	return func(e *Error) {
		e.Source = source
	}
}

// WithColor enables ANSI colors in the annotated source.
func WithColor(colored bool) ErrorOpt {
	return func(e *Error) {
		e.Colored = colored
	}
}

// Wrap applies opts to err if it is an [*Error], and returns err.
func Wrap(err error, opts ...ErrorOpt) error {
	var yamlErr *Error
	if errors.As(err, &yamlErr) {
		for _, opt := range opts {
			opt(yamlErr)
		}
	}

	return err
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	if e.Err == nil {
		return ""
	}

	tk := e.Token
	if tk == nil && e.Path != nil && e.Source != nil {
		tk = tokenFromPath(e.Source, e.Path)
	}

	if tk == nil {
		if e.Path != nil {
			return fmt.Sprintf("error at %s: %v", e.Path, e.Err)
		}

		return e.Err.Error()
	}

	msg := fmt.Sprintf("[%d:%d] %v", tk.Position.Line, tk.Position.Column, e.Err)
	if e.Path != nil {
		msg = fmt.Sprintf("[%d:%d] %s: %v", tk.Position.Line, tk.Position.Column, e.Path, e.Err)
	}

	var pp printer.Printer

	return msg + "\n" + pp.PrintErrorToken(tk, e.Colored)
}

// tokenFromPath returns the key token for path in source, or the value token
// when the path has no key (the root or a sequence index).
func tokenFromPath(source []byte, path *yaml.Path) *token.Token {
	file, err := parser.ParseBytes(source, 0)
	if err != nil {
		return nil
	}

	node, err := path.FilterFile(file)
	if err != nil {
		return nil
	}

	if tk := keyToken(file, path); tk != nil {
		return tk
	}

	return node.GetToken()
}

func keyToken(file *ast.File, path *yaml.Path) *token.Token {
	s := path.String()

	dot := strings.LastIndex(s, ".")
	if dot <= strings.LastIndex(s, "[") {
		return nil
	}

	parent, err := yaml.PathString(s[:dot])
	if err != nil {
		return nil
	}

	node, err := parent.FilterFile(file)
	if err != nil {
		return nil
	}

	mapping, ok := node.(*ast.MappingNode)
	if !ok {
		return nil
	}

	key := s[dot+1:]
	for _, v := range mapping.Values {
		if v.Key.String() == key {
			return v.Key.GetToken()
		}
	}

	return nil
}
