package configs

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/macropower/alsroute/pkg/rules"
	"github.com/macropower/alsroute/pkg/sheet"
)

// ErrSheetSource is returned when both a sheet URL and path are set.
var ErrSheetSource = errors.New("only one of url and path may be set")

// Sheet configures an external rule sheet.
type Sheet struct {
	// Aliases map instruction words to decibel offsets.
	Aliases map[string]float64 `json:"aliases,omitempty" jsonschema:"title=Aliases"`
	// URL is an http(s) URL of a CSV export, or a Google Sheets link.
	URL string `json:"url,omitempty" jsonschema:"title=URL"`
	// Path is a local CSV file.
	Path string `json:"path,omitempty" jsonschema:"title=Path"`
	// Timeout bounds each fetch of the sheet.
	Timeout string `json:"timeout,omitempty" jsonschema:"title=Timeout,pattern=^([0-9.]+(ns|us|ms|s|m|h))+$"`
	// CacheTTL is how long a fetched sheet is reused.
	CacheTTL string `json:"cacheTTL,omitempty" jsonschema:"title=Cache TTL,pattern=^([0-9.]+(ns|us|ms|s|m|h))+$"`
	// NameColumn is the header of the track name column.
	NameColumn string `json:"nameColumn,omitempty" jsonschema:"title=Name Column"`
}

// EnsureDefaults initializes empty fields to their default values.
func (s *Sheet) EnsureDefaults() {
	if s.Timeout == "" {
		s.Timeout = sheet.DefaultTimeout.String()
	}
	if s.CacheTTL == "" {
		s.CacheTTL = sheet.DefaultCacheTTL.String()
	}
	if s.NameColumn == "" {
		s.NameColumn = sheet.DefaultNameColumn
	}
	if s.Aliases == nil {
		s.Aliases = rules.DefaultAliases()
	}
}

// Enabled reports whether a sheet source is configured.
func (s *Sheet) Enabled() bool {
	return s.URL != "" || s.Path != ""
}

// Validate checks the sheet settings.
func (s *Sheet) Validate() error {
	if s.URL != "" && s.Path != "" {
		return ErrSheetSource
	}

	if s.URL != "" {
		u, err := url.Parse(s.URL)
		if err != nil {
			return fmt.Errorf("parse url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("url %q: scheme must be http or https", s.URL)
		}
	}

	_, err := parseDuration(s.Timeout, sheet.DefaultTimeout)
	if err != nil {
		return fmt.Errorf("timeout: %w", err)
	}

	_, err = parseDuration(s.CacheTTL, sheet.DefaultCacheTTL)
	if err != nil {
		return fmt.Errorf("cacheTTL: %w", err)
	}

	return nil
}

// Source returns the configured sheet location.
func (s *Sheet) Source() string {
	if s.URL != "" {
		return s.URL
	}

	return s.Path
}

// Loader returns a cached [sheet.Loader] for the configured source.
func (s *Sheet) Loader() (*sheet.Cache, error) {
	if !s.Enabled() {
		return nil, errors.New("no sheet url or path configured")
	}

	timeout, err := parseDuration(s.Timeout, sheet.DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("timeout: %w", err)
	}

	ttl, err := parseDuration(s.CacheTTL, sheet.DefaultCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("cacheTTL: %w", err)
	}

	loader := sheet.NewLoader(s.Source(),
		sheet.WithTimeout(timeout),
		sheet.WithParseOpts(sheet.WithNameColumn(s.NameColumn)),
	)

	return sheet.NewCache(loader, ttl), nil
}
