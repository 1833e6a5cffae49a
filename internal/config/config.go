package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"schedcal/internal/model"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration. Per-request options in
// an API call override these values; the config provides the defaults.
type Config struct {
	// Listen is the HTTP listen address for the Web API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone all wall-clock schedule times are
	// interpreted in (e.g. "America/New_York"). This is an explicit field
	// rather than an environment-derived fallback, so exports do not change
	// with the host's TZ setting.
	Timezone string `yaml:"timezone" json:"timezone"`

	// CalendarName, when set, overrides the per-target default calendar
	// name ("Class Schedule" for ICS exports, "My Schedule" for syncs).
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`

	// RepeatWeeks is the default recurrence horizon in weeks.
	RepeatWeeks int `yaml:"repeat_weeks" json:"repeat_weeks"`

	// SemesterEndDate ("YYYY-MM-DD"), when set, terminates every weekly
	// recurrence on that date instead of RepeatWeeks from now.
	SemesterEndDate string `yaml:"semester_end_date,omitempty" json:"semester_end_date,omitempty"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "UTC",
		RepeatWeeks: model.DefaultRepeatWeeks,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.RepeatWeeks <= 0 {
		c.RepeatWeeks = model.DefaultRepeatWeeks
	}
}

// Validate checks the fields that would otherwise only fail at request time.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: invalid timezone %q: %w", c.Timezone, err)
	}
	if c.SemesterEndDate != "" {
		if _, err := time.Parse("2006-01-02", c.SemesterEndDate); err != nil {
			return fmt.Errorf("config: invalid semester_end_date %q: %w", c.SemesterEndDate, err)
		}
	}
	return nil
}

// SemesterEnd returns the parsed semester end date, or the zero time when
// none is configured. Normalize/Validate must have run first.
func (c *Config) SemesterEnd() time.Time {
	if c.SemesterEndDate == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", c.SemesterEndDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ExportRequest builds the export configuration for the given events from
// the config defaults.
func (c *Config) ExportRequest(events []model.ScheduleEvent) model.ExportRequest {
	return model.ExportRequest{
		Events:          events,
		CalendarName:    c.CalendarName,
		Timezone:        c.Timezone,
		RepeatWeeks:     c.RepeatWeeks,
		SemesterEndDate: c.SemesterEnd(),
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".schedcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Set permissions to 0600 on temp file before rename.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	// Rename over the target path.
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}
