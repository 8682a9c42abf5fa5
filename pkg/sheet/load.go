package sheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/alsroute/pkg/log"
)

// DefaultTimeout bounds a single fetch of a remote rule table.
const DefaultTimeout = 10 * time.Second

var (
	// ErrRuleSource is the class of every [LoadError].
	ErrRuleSource = errors.New("rule source")
	// ErrTimeout indicates the rule source did not respond in time.
	ErrTimeout = errors.New("timeout")
	// ErrTransport indicates the rule source could not be reached or read.
	ErrTransport = errors.New("transport error")
	// ErrParse indicates the rule source returned data that is not a rule table.
	ErrParse = errors.New("parse error")
)

// LoadError describes a failed rule table load. It matches [ErrRuleSource],
// its Kind ([ErrTimeout], [ErrTransport] or [ErrParse]) and the underlying
// error with [errors.Is].
type LoadError struct {
	Kind   error
	Err    error
	Source string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load rules from %s: %v: %v", e.Source, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrRuleSource, e.Kind, e.Err}
}

// Loader supplies a rule [Table].
type Loader interface {
	Load(ctx context.Context) (*Table, error)
}

// LoaderOpt configures loaders created by [NewLoader].
type LoaderOpt func(*loaderOptions)

type loaderOptions struct {
	client    *http.Client
	parseOpts []ParseOpt
	timeout   time.Duration
}

// WithTimeout bounds each remote fetch. Zero or negative values keep
// [DefaultTimeout].
func WithTimeout(d time.Duration) LoaderOpt {
	return func(o *loaderOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHTTPClient sets the client used for remote fetches.
func WithHTTPClient(c *http.Client) LoaderOpt {
	return func(o *loaderOptions) {
		o.client = c
	}
}

// WithParseOpts sets options passed to [Parse].
func WithParseOpts(opts ...ParseOpt) LoaderOpt {
	return func(o *loaderOptions) {
		o.parseOpts = append(o.parseOpts, opts...)
	}
}

// NewLoader returns an [HTTPLoader] for http(s) URLs and a [FileLoader] for
// anything else.
//
//nolint:ireturn // Selects an implementation by source.
func NewLoader(source string, opts ...LoaderOpt) Loader {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewHTTPLoader(source, opts...)
	}

	return NewFileLoader(source, opts...)
}

// HTTPLoader fetches a CSV rule table over HTTP.
type HTTPLoader struct {
	tracer  trace.Tracer
	client  *http.Client
	url     string
	opts    []ParseOpt
	timeout time.Duration
}

// NewHTTPLoader creates a new [HTTPLoader]. Google Sheets document links are
// rewritten to their CSV export URL.
func NewHTTPLoader(rawURL string, opts ...LoaderOpt) *HTTPLoader {
	o := &loaderOptions{timeout: DefaultTimeout, client: http.DefaultClient}
	for _, opt := range opts {
		opt(o)
	}

	return &HTTPLoader{
		tracer:  otel.Tracer("sheet"),
		client:  o.client,
		url:     ExportURL(rawURL),
		opts:    o.parseOpts,
		timeout: o.timeout,
	}
}

// Load fetches and parses the table.
func (l *HTTPLoader) Load(ctx context.Context) (*Table, error) {
	ctx, span := l.tracer.Start(ctx, "fetch", trace.WithAttributes(
		attribute.String("url", l.url),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	logger := log.WithContext(ctx).With(slog.String("url", l.url))
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, http.NoBody)
	if err != nil {
		return nil, l.fail(span, ErrTransport, fmt.Errorf("create request: %w", err))
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, l.fail(span, classify(ctx, err), err)
	}

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			logger.DebugContext(ctx, "close response body", slog.Any("err", err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, l.fail(span, ErrTransport, fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, l.fail(span, classify(ctx, err), fmt.Errorf("read body: %w", err))
	}

	t, err := Parse(bytes.NewReader(body), l.opts...)
	if err != nil {
		return nil, l.fail(span, ErrParse, err)
	}

	logger.DebugContext(ctx, "fetched rule table",
		slog.Int("rows", len(t.Rows)),
		slog.Any("groups", t.Groups),
		slog.Duration("duration", time.Since(start)),
	)

	return t, nil
}

func (l *HTTPLoader) fail(span trace.Span, kind, err error) error {
	span.RecordError(err)

	return &LoadError{Kind: kind, Source: l.url, Err: err}
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	return ErrTransport
}

// FileLoader reads a CSV rule table from disk.
type FileLoader struct {
	path string
	opts []ParseOpt
}

// NewFileLoader creates a new [FileLoader].
func NewFileLoader(path string, opts ...LoaderOpt) *FileLoader {
	o := &loaderOptions{}
	for _, opt := range opts {
		opt(o)
	}

	return &FileLoader{path: path, opts: o.parseOpts}
}

// Load reads and parses the table.
func (l *FileLoader) Load(_ context.Context) (*Table, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, &LoadError{Kind: ErrTransport, Source: l.path, Err: err}
	}

	defer func() {
		err := f.Close()
		if err != nil {
			slog.Debug("close rule table", slog.String("path", l.path), slog.Any("err", err))
		}
	}()

	t, err := Parse(f, l.opts...)
	if err != nil {
		return nil, &LoadError{Kind: ErrParse, Source: l.path, Err: err}
	}

	return t, nil
}

// ExportURL rewrites a Google Sheets document link, such as
// https://docs.google.com/spreadsheets/d/<id>/edit#gid=123, to the CSV export
// URL of the same sheet. Other URLs are returned unchanged.
func ExportURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != "docs.google.com" {
		return rawURL
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "spreadsheets" || parts[1] != "d" {
		return rawURL
	}

	query := u.Query()
	if len(parts) >= 4 && parts[3] == "export" && query.Get("format") == "csv" {
		return rawURL
	}

	gid := query.Get("gid")
	if gid == "" {
		if frag, err := url.ParseQuery(u.Fragment); err == nil {
			gid = frag.Get("gid")
		}
	}
	if gid == "" {
		gid = "0"
	}

	out := url.URL{
		Scheme:   "https",
		Host:     u.Host,
		Path:     fmt.Sprintf("/spreadsheets/d/%s/export", parts[2]),
		RawQuery: url.Values{"format": {"csv"}, "gid": {gid}}.Encode(),
	}

	return out.String()
}
