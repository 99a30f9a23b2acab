package types

import (
	"errors"
	"time"
)

// Config holds backend selection and write-path parameters.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// UUIDVersion selects the identifier generator: "v7" (default) or "v4".
	UUIDVersion string `json:"uuid_version,omitempty" yaml:"uuid_version,omitempty"`

	// Precision truncates sampled timestamps, e.g. "1s" for stores that
	// persist RFC3339 text. Empty keeps full clock precision. Updates inside
	// one interval share an updated_at value.
	Precision string `json:"precision,omitempty" yaml:"precision,omitempty"`

	// Location is an IANA zone name for sampled timestamps. Empty means UTC.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Supported identifier generators.
const (
	UUIDv7 = "v7"
	UUIDv4 = "v4"
)

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrUUIDVersionUnknown = errors.New("unknown uuid version")
	ErrPrecisionInvalid   = errors.New("precision must be a positive duration")
	ErrLocationUnknown    = errors.New("unknown time zone")
	ErrLogLevelUnknown    = errors.New("unknown log level")
	ErrLogFormatUnknown   = errors.New("unknown log format")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
}

var knownUUIDVersions = map[string]bool{
	"":     true,
	UUIDv7: true,
	UUIDv4: true,
}

var knownLogLevels = map[string]bool{
	"": true, "debug": true, "info": true, "warn": true, "error": true,
}

var knownLogFormats = map[string]bool{
	"": true, "text": true, "json": true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if !knownUUIDVersions[c.UUIDVersion] {
		return ErrUUIDVersionUnknown
	}
	if _, err := c.PrecisionDuration(); err != nil {
		return err
	}
	if _, err := c.TimeLocation(); err != nil {
		return err
	}
	if !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	if !knownLogFormats[c.LogFormat] {
		return ErrLogFormatUnknown
	}
	return nil
}

// PrecisionDuration parses Precision. An empty value yields zero.
func (c Config) PrecisionDuration() (time.Duration, error) {
	if c.Precision == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Precision)
	if err != nil || d <= 0 {
		return 0, ErrPrecisionInvalid
	}
	return d, nil
}

// TimeLocation resolves Location. An empty value yields time.UTC.
func (c Config) TimeLocation() (*time.Location, error) {
	if c.Location == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, ErrLocationUnknown
	}
	return loc, nil
}
