package domain

import (
	"fmt"
	"net/url"
	"runtime"
	"time"
)

const (
	DefaultFetchTimeout = 30 * time.Second
	DefaultHintTimeout  = 10 * time.Second
)

// ProjectConfig holds project-level configuration loaded from .dataval.yaml.
type ProjectConfig struct {
	XSD          string      `yaml:"xsd"            json:"xsd,omitempty"`
	Schematron   string      `yaml:"schematron"     json:"schematron,omitempty"`
	JSONSchema   string      `yaml:"json_schema"    json:"json_schema,omitempty"`
	CSVSchema    string      `yaml:"csv_schema"     json:"csv_schema,omitempty"`
	Concurrency  int         `yaml:"concurrency"    json:"concurrency,omitempty"`
	Suggestions  *bool       `yaml:"suggestions"    json:"suggestions,omitempty"`
	Hints        HintsConfig `yaml:"hints"          json:"hints,omitempty"`
	CacheDir     string      `yaml:"cache_dir"      json:"cache_dir,omitempty"`
	FetchTimeout Duration    `yaml:"fetch_timeout"  json:"fetch_timeout,omitempty"`
	ExcludePaths []string    `yaml:"exclude_paths"  json:"exclude_paths,omitempty"`
}

// HintsConfig gates the optional external hint generator.
// With Enabled set and no Endpoint, the offline template generator is used.
type HintsConfig struct {
	Enabled  bool     `yaml:"enabled"  json:"enabled"`
	Endpoint string   `yaml:"endpoint" json:"endpoint,omitempty"`
	Timeout  Duration `yaml:"timeout"  json:"timeout,omitempty"`
}

// Duration is a time.Duration that decodes from strings like "30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// DefaultConfig returns a zero-value config; effective defaults come from the accessors.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{}
}

// EffectiveConcurrency returns the configured worker count or the CPU count.
func (c ProjectConfig) EffectiveConcurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return runtime.NumCPU()
}

// SuggestionsEnabled reports whether rule-based suggestions are attached (default true).
func (c ProjectConfig) SuggestionsEnabled() bool {
	return c.Suggestions == nil || *c.Suggestions
}

// EffectiveFetchTimeout returns the remote schema fetch timeout.
func (c ProjectConfig) EffectiveFetchTimeout() time.Duration {
	if c.FetchTimeout > 0 {
		return time.Duration(c.FetchTimeout)
	}
	return DefaultFetchTimeout
}

// EffectiveTimeout returns the hint request timeout.
func (h HintsConfig) EffectiveTimeout() time.Duration {
	if h.Timeout > 0 {
		return time.Duration(h.Timeout)
	}
	return DefaultHintTimeout
}

// HasValidators reports whether at least one schema is configured.
func (c ProjectConfig) HasValidators() bool {
	return c.XSD != "" || c.JSONSchema != "" || c.CSVSchema != ""
}

// Schemas returns the configured schema references.
func (c ProjectConfig) Schemas() SchemaSet {
	return SchemaSet{XSD: c.XSD, Schematron: c.Schematron, JSONSchema: c.JSONSchema, CSVSchema: c.CSVSchema}
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", c.Concurrency)
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must be positive")
	}
	if c.Hints.Timeout < 0 {
		return fmt.Errorf("hints.timeout must be positive")
	}
	if c.Schematron != "" && c.XSD == "" {
		return fmt.Errorf("schematron requires xsd to be set")
	}
	if c.Hints.Endpoint != "" {
		u, err := url.Parse(c.Hints.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("hints.endpoint must be an http(s) URL, got %q", c.Hints.Endpoint)
		}
	}
	return nil
}

// Merge overlays explicit (non-zero) values from override on top of c.
func (c ProjectConfig) Merge(override ProjectConfig) ProjectConfig {
	result := c
	if override.XSD != "" {
		result.XSD = override.XSD
	}
	if override.Schematron != "" {
		result.Schematron = override.Schematron
	}
	if override.JSONSchema != "" {
		result.JSONSchema = override.JSONSchema
	}
	if override.CSVSchema != "" {
		result.CSVSchema = override.CSVSchema
	}
	if override.Concurrency > 0 {
		result.Concurrency = override.Concurrency
	}
	if override.Suggestions != nil {
		result.Suggestions = override.Suggestions
	}
	if override.Hints.Enabled {
		result.Hints.Enabled = true
	}
	if override.Hints.Endpoint != "" {
		result.Hints.Endpoint = override.Hints.Endpoint
	}
	if override.Hints.Timeout > 0 {
		result.Hints.Timeout = override.Hints.Timeout
	}
	if override.CacheDir != "" {
		result.CacheDir = override.CacheDir
	}
	if override.FetchTimeout > 0 {
		result.FetchTimeout = override.FetchTimeout
	}
	if len(override.ExcludePaths) > 0 {
		result.ExcludePaths = override.ExcludePaths
	}
	return result
}
