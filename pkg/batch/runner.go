package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/macropower/alsroute/pkg/log"
	"github.com/macropower/alsroute/pkg/rules"
	"github.com/macropower/alsroute/pkg/transform"
)

// SourceFunc returns the rule source for a batch. It is called once per
// batch, so every file of a batch sees the same rules.
type SourceFunc func(ctx context.Context) (rules.Source, error)

// Summary is the outcome of a batch.
type Summary struct {
	Results []*Result
	Failed  []*FileError
	Skipped []Skip
}

// Err returns an error when any file failed.
func (s *Summary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}

	return fmt.Errorf("%d of %d files failed", len(s.Failed), len(s.Failed)+len(s.Results))
}

// Runner processes Live set files on disk.
type Runner struct {
	tracer        trace.Tracer
	source        SourceFunc
	listeners     []chan<- Event
	transformOpts []transform.Opt
	group         string
	suffix        string
	outDir        string
	jobs          int
	debounce      time.Duration
	mu            sync.Mutex
	dryRun        bool
	diff          bool
}

// RunnerOpt configures a [Runner].
type RunnerOpt func(*Runner)

// WithGroup sets the destination group used in output names.
func WithGroup(group string) RunnerOpt {
	return func(r *Runner) {
		r.group = group
	}
}

// WithOutputSuffix sets the output name suffix. The default is
// [DefaultSuffix].
func WithOutputSuffix(suffix string) RunnerOpt {
	return func(r *Runner) {
		r.suffix = suffix
	}
}

// WithOutputDir writes outputs to dir instead of next to their inputs.
func WithOutputDir(dir string) RunnerOpt {
	return func(r *Runner) {
		r.outDir = dir
	}
}

// WithJobs sets how many files are processed at once. Non-positive values
// use the number of CPUs.
func WithJobs(n int) RunnerOpt {
	return func(r *Runner) {
		r.jobs = n
	}
}

// WithDryRun transforms files without writing outputs.
func WithDryRun(dryRun bool) RunnerOpt {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// WithDiffs attaches a unified diff to every [Result].
func WithDiffs(diff bool) RunnerOpt {
	return func(r *Runner) {
		r.diff = diff
	}
}

// WithTransform sets options for the underlying [transform.Transformer].
func WithTransform(opts ...transform.Opt) RunnerOpt {
	return func(r *Runner) {
		r.transformOpts = append(r.transformOpts, opts...)
	}
}

// WithDebounce sets how long a watched file must be quiet before it is
// processed.
func WithDebounce(d time.Duration) RunnerOpt {
	return func(r *Runner) {
		r.debounce = d
	}
}

// NewRunner creates a new [Runner].
func NewRunner(source SourceFunc, opts ...RunnerOpt) *Runner {
	r := &Runner{
		tracer:   otel.Tracer("batch"),
		source:   source,
		suffix:   DefaultSuffix,
		debounce: time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.jobs <= 0 {
		r.jobs = runtime.NumCPU()
	}

	return r
}

// Subscribe registers ch to receive events. Events are sent synchronously,
// so ch must be drained while the runner is active.
func (r *Runner) Subscribe(ch chan<- Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners = append(r.listeners, ch)
}

func (r *Runner) broadcast(evt Event) {
	r.mu.Lock()
	listeners := r.listeners
	r.mu.Unlock()

	for _, ch := range listeners {
		ch <- evt
	}
}

// Run processes every set found under paths. An error is returned only when
// no rules could be loaded; per-file failures are collected in the summary.
func (r *Runner) Run(ctx context.Context, paths []string) (*Summary, error) {
	ctx, span := r.tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.StringSlice("paths", paths),
		attribute.String("group", r.group),
	))
	defer span.End()

	logger := log.WithContext(ctx)

	files, skips, errs := Discover(paths, r.suffix)

	summary := &Summary{Skipped: skips}
	for _, s := range skips {
		logger.WarnContext(ctx, "skip input", slog.String("file", s.Path), slog.String("reason", s.Reason))
		r.broadcast(EventSkip(s))
	}

	for _, err := range errs {
		fe := asFileError(err)
		summary.Failed = append(summary.Failed, fe)
		r.broadcast(EventFail{Err: fe})
	}

	if len(files) == 0 {
		return summary, nil
	}

	source, err := r.source(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return summary, fmt.Errorf("load rules: %w", err)
	}

	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(r.jobs)

	for _, path := range files {
		g.Go(func() error {
			res, err := r.processPath(ctx, source, path)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				summary.Failed = append(summary.Failed, asFileError(err))
			} else {
				summary.Results = append(summary.Results, res)
			}

			return nil
		})
	}

	_ = g.Wait()

	logger.InfoContext(ctx, "batch complete",
		slog.Int("processed", len(summary.Results)),
		slog.Int("failed", len(summary.Failed)),
		slog.Int("skipped", len(summary.Skipped)),
	)

	return summary, nil
}

func (r *Runner) processPath(ctx context.Context, source rules.Source, path string) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, "process", trace.WithAttributes(
		attribute.String("file", path),
	))
	defer span.End()

	logger := log.WithContext(ctx).With(slog.String("file", path))
	if r.group != "" {
		logger = logger.With(slog.String("group", r.group))
	}

	ctx = log.NewContext(ctx, logger)
	start := time.Now()

	r.broadcast(EventStart{Path: path})

	fail := func(err error) (*Result, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "process file", slog.Any("err", err))

		fe := &FileError{Path: path, Err: err}
		r.broadcast(EventFail{Err: fe})

		return nil, fe
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fail(fmt.Errorf("read: %w", err))
	}

	res, err := ProcessFile(ctx, raw, path, r.group, source,
		WithSuffix(r.suffix),
		WithTransformOpts(r.transformOpts...),
		WithDiff(r.diff),
	)
	if err != nil {
		return fail(err)
	}

	dir := r.outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}

	res.Output = filepath.Join(dir, res.Output)

	if !r.dryRun {
		err = os.MkdirAll(dir, 0o755)
		if err != nil {
			return fail(fmt.Errorf("%w: %w", ErrWrite, err))
		}

		res.Output, err = WriteUnique(res.Output, res.Data)
		if err != nil {
			return fail(err)
		}
	}

	for _, w := range res.Report.Warnings {
		logger.WarnContext(ctx, "rule warning", slog.Any("err", w))
	}

	logger.InfoContext(ctx, "routed set",
		slog.String("output", res.Output),
		slog.Int("tracks", res.Report.Tracks),
		slog.Int("changed", len(res.Report.Changes)),
		slog.Int("warnings", len(res.Report.Warnings)),
		slog.String("size", humanize.Bytes(uint64(len(res.Data)))),
		slog.Duration("duration", time.Since(start)),
		slog.Bool("dry_run", r.dryRun),
	)

	r.broadcast(EventDone{Result: res, DryRun: r.dryRun})

	return res, nil
}

func asFileError(err error) *FileError {
	if fe, ok := err.(*FileError); ok { //nolint:errorlint // Produced unwrapped in this package.
		return fe
	}

	return &FileError{Err: err}
}
