// Package configs provides the global Config configuration type for alsroute.
package configs

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/invopop/jsonschema"

	_ "embed"

	"github.com/macropower/alsroute/api"
	"github.com/macropower/alsroute/api/v1beta1"
	"github.com/macropower/alsroute/pkg/rules"
	"github.com/macropower/alsroute/pkg/yaml"
)

//go:generate go run ../../../internal/schemagen -o configs.v1beta1.json

const (
	// Kind is the kind of the global configuration.
	Kind = "Configuration"

	// DefaultGroup is the group used when none is selected.
	DefaultGroup = "default"

	// FileName is the name of the global configuration file.
	FileName = "config.yaml"
)

var (
	//go:embed config.yaml
	defaultConfigYAML []byte

	// ValidKinds contains the valid kind values for global configurations.
	ValidKinds = []string{Kind}

	// LocalFileNames are the names of project-local configuration files,
	// searched for from the input paths upward.
	LocalFileNames = []string{".alsroute.yaml", "alsroute.yaml"}

	// ErrInvalidConfig is returned by [Config.Validate].
	ErrInvalidConfig = errors.New("invalid configuration")

	// Compile-time interface checks.
	_ v1beta1.Object = (*Config)(nil)

	schema = sync.OnceValues(func() ([]byte, error) {
		return yaml.NewSchemaGenerator(New()).Generate()
	})

	validator = sync.OnceValues(func() (*yaml.Validator, error) {
		data, err := Schema()
		if err != nil {
			return nil, err
		}

		return yaml.NewValidator("/configs.v1beta1.json", data)
	})
)

// Config represents the global alsroute configuration.
//
//nolint:recvcheck // Must satisfy the jsonschema interface.
type Config struct {
	// Groups are the built-in destination groups, keyed by name.
	Groups map[string]*Group `json:"groups,omitempty" jsonschema:"title=Groups"`
	// Sheet configures an external rule sheet.
	Sheet *Sheet `json:"sheet,omitempty" jsonschema:"title=Sheet"`
	// Policy selects how mute and volume rules are written.
	Policy *Policy `json:"policy,omitempty" jsonschema:"title=Policy"`
	// Output configures where routed projects are written.
	Output *Output `json:"output,omitempty" jsonschema:"title=Output"`

	v1beta1.TypeMeta `json:",inline"`
}

// New creates a new global [Config] with default values.
func New() *Config {
	c := &Config{
		TypeMeta: v1beta1.TypeMeta{
			APIVersion: v1beta1.APIVersion,
			Kind:       Kind,
		},
	}
	c.EnsureDefaults()

	return c
}

// Default returns the embedded default configuration.
func Default() (*Config, error) {
	v, err := DefaultValidator()
	if err != nil {
		return nil, err
	}

	cfg, err := api.NewLoader(defaultConfigYAML, New, v).Load()
	if err != nil {
		return nil, fmt.Errorf("load default config: %w", err)
	}

	return cfg, nil
}

// EnsureDefaults initializes nil fields to their default values.
func (c *Config) EnsureDefaults() {
	if c.Groups == nil {
		c.Groups = map[string]*Group{}
	}

	for name, g := range c.Groups {
		if g == nil {
			c.Groups[name] = &Group{}
		}
	}

	if c.Sheet == nil {
		c.Sheet = &Sheet{}
	}
	c.Sheet.EnsureDefaults()

	if c.Policy == nil {
		c.Policy = &Policy{}
	}
	c.Policy.EnsureDefaults()

	if c.Output == nil {
		c.Output = &Output{}
	}
	c.Output.EnsureDefaults()
}

// Validate checks the values the schema cannot express.
func (c *Config) Validate() error {
	var errs []error

	err := c.Check(ValidKinds...)
	if err != nil {
		errs = append(errs, err)
	}

	for _, name := range c.GroupNames() {
		_, err := c.Groups[name].Source()
		if err != nil {
			errs = append(errs, fmt.Errorf("group %q: %w", name, err))
		}
	}

	err = c.Sheet.Validate()
	if err != nil {
		errs = append(errs, fmt.Errorf("sheet: %w", err))
	}

	_, err = c.Policy.TransformOpts()
	if err != nil {
		errs = append(errs, fmt.Errorf("policy: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}

	return nil
}

// GroupNames returns the configured group names, with [DefaultGroup] first
// and the rest sorted.
func (c *Config) GroupNames() []string {
	names := slices.Sorted(maps.Keys(c.Groups))
	if i := slices.Index(names, DefaultGroup); i > 0 {
		names = slices.Delete(names, i, i+1)
		names = slices.Insert(names, 0, DefaultGroup)
	}

	return names
}

// Group returns the group with the given name. Names are matched
// case-insensitively.
func (c *Config) Group(name string) (*Group, error) {
	if g, ok := c.Groups[name]; ok {
		return g, nil
	}

	for k, g := range c.Groups {
		if strings.EqualFold(k, name) {
			return g, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", rules.ErrUnknownGroup, name)
}

// Merge overlays other onto c. Groups are replaced by name. The sheet,
// policy and output sections of other replace those of c when they differ
// from their defaults.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	defaults := New()

	maps.Copy(c.Groups, other.Groups)

	if other.Sheet != nil && other.Sheet.Enabled() {
		c.Sheet = other.Sheet
	}
	if other.Policy != nil && *other.Policy != *defaults.Policy {
		c.Policy = other.Policy
	}
	if other.Output != nil && *other.Output != *defaults.Output {
		c.Output = other.Output
	}

	c.EnsureDefaults()
}

func (c Config) JSONSchemaExtend(jss *jsonschema.Schema) {
	v1beta1.ExtendSchemaWithEnums(jss, v1beta1.ValidAPIVersions, ValidKinds)
}

// Marshal serializes the config to YAML.
func (c *Config) Marshal() ([]byte, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return b, nil
}

// Schema returns the JSON schema of [Config].
func Schema() ([]byte, error) {
	return schema()
}

// DefaultValidator returns a validator for the JSON schema of [Config].
func DefaultValidator() (*yaml.Validator, error) {
	v, err := validator()
	if err != nil {
		return nil, fmt.Errorf("create config validator: %w", err)
	}

	return v, nil
}

// Load loads the configuration file at path.
func Load(path string, colored bool) (*Config, error) {
	v, err := DefaultValidator()
	if err != nil {
		return nil, err
	}

	loader, err := api.NewLoaderFromFile(path, New, v, api.WithColoredErrors(colored))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// WriteDefault writes the embedded default config.yaml to the specified path.
func WriteDefault(path string, force bool) error {
	err := api.WriteDefaultFile(path, defaultConfigYAML, force, "configuration")
	if err != nil {
		return fmt.Errorf("write default config: %w", err)
	}

	return nil
}

// GetPath returns the path to the global configuration file.
func GetPath() string {
	return api.GetConfigPath(FileName)
}

// parseDuration parses s, returning def when s is empty.
func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("parse duration: %q is negative", s)
	}

	return d, nil
}
