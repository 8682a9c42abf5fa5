package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/aymanbagabas/go-udiff"

	"github.com/macropower/alsroute/pkg/als"
	"github.com/macropower/alsroute/pkg/rules"
	"github.com/macropower/alsroute/pkg/transform"
)

// ErrWrite indicates an output file could not be written.
var ErrWrite = errors.New("write output")

// FileError is the failure of one input file.
type FileError struct {
	Err  error
	Path string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Result is a transformed set.
type Result struct {
	Report *transform.Report
	// Input is the name or path of the original file.
	Input string
	// Output is the generated file name, or the written path once saved.
	Output string
	// Diff is a unified diff of the uncompressed XML, set when requested
	// with [WithDiff].
	Diff   string
	Data   []byte
}

// ProcessOpt configures [ProcessFile].
type ProcessOpt func(*processOptions)

type processOptions struct {
	suffix    string
	transform []transform.Opt
	diff      bool
}

// WithSuffix sets the output name suffix. The default is [DefaultSuffix].
func WithSuffix(suffix string) ProcessOpt {
	return func(o *processOptions) {
		o.suffix = suffix
	}
}

// WithDiff records a unified diff of the document in [Result.Diff].
func WithDiff(diff bool) ProcessOpt {
	return func(o *processOptions) {
		o.diff = diff
	}
}

// WithTransformOpts sets options for the underlying [transform.Transformer].
func WithTransformOpts(opts ...transform.Opt) ProcessOpt {
	return func(o *processOptions) {
		o.transform = append(o.transform, opts...)
	}
}

// ProcessFile transforms the raw bytes of one set named name. The output is
// named after name and group (see [OutputName]). Output bytes are returned
// only when the whole set was transformed and serialized.
func ProcessFile(
	ctx context.Context,
	raw []byte,
	name, group string,
	source rules.Source,
	opts ...ProcessOpt,
) (*Result, error) {
	o := &processOptions{suffix: DefaultSuffix}
	for _, opt := range opts {
		opt(o)
	}

	before, err := als.Decompress(raw)
	if err != nil {
		return nil, err
	}

	doc, err := als.Parse(before)
	if err != nil {
		return nil, err
	}

	report, err := transform.New(source, o.transform...).Apply(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}

	after, err := doc.XML()
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	data, err := als.Compress(after)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	res := &Result{
		Input:  name,
		Output: OutputName(name, group, o.suffix),
		Data:   data,
		Report: report,
	}

	if o.diff {
		res.Diff = udiff.Unified(name, res.Output, string(before), string(after))
	}

	return res, nil
}
