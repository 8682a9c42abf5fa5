package api

import (
	"bytes"
	"fmt"

	"github.com/macropower/alsroute/api/v1beta1"
	"github.com/macropower/alsroute/pkg/yaml"
)

// Validator validates decoded configuration data.
type Validator interface {
	Validate(data any) error
}

// Loader decodes configuration of type T. Errors point at the offending
// location of the source document.
type Loader[T v1beta1.Object] struct {
	validator Validator
	newFunc   func() T
	data      []byte
	colored   bool
}

// LoaderOpt configures a [Loader].
type LoaderOpt func(*loaderOptions)

type loaderOptions struct {
	colored bool
}

// WithColoredErrors renders annotated sources in errors with ANSI colors.
func WithColoredErrors(colored bool) LoaderOpt {
	return func(o *loaderOptions) {
		o.colored = colored
	}
}

// NewLoader creates a [Loader] for data. newFunc returns a T with default
// values that data is decoded over.
func NewLoader[T v1beta1.Object](data []byte, newFunc func() T, validator Validator, opts ...LoaderOpt) *Loader[T] {
	o := &loaderOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return &Loader[T]{
		data:      data,
		newFunc:   newFunc,
		validator: validator,
		colored:   o.colored,
	}
}

// NewLoaderFromFile creates a [Loader] for the file at path.
func NewLoaderFromFile[T v1beta1.Object](
	path string,
	newFunc func() T,
	validator Validator,
	opts ...LoaderOpt,
) (*Loader[T], error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	return NewLoader(data, newFunc, validator, opts...), nil
}

// Load validates the data against the schema, decodes it, and applies
// defaults.
//
//nolint:ireturn // Generic type parameter return.
func (l *Loader[T]) Load() (T, error) {
	var zero T

	var raw any

	err := yaml.NewDecoder(bytes.NewReader(l.data)).Decode(&raw)
	if err != nil {
		return zero, l.wrap(err)
	}

	if l.validator != nil {
		err = l.validator.Validate(raw)
		if err != nil {
			return zero, l.wrap(err)
		}
	}

	cfg := l.newFunc()

	err = yaml.NewDecoder(bytes.NewReader(l.data)).Decode(cfg)
	if err != nil {
		return zero, l.wrap(err)
	}

	cfg.EnsureDefaults()

	return cfg, nil
}

func (l *Loader[T]) wrap(err error) error {
	return fmt.Errorf("load config: %w", yaml.Wrap(err, yaml.WithSource(l.data), yaml.WithColor(l.colored)))
}
