package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"weekendplan/internal/autosave"
	"weekendplan/internal/capture"
	"weekendplan/internal/model"
	"weekendplan/internal/storage"
	"weekendplan/internal/timeutil"
)

// NOTE: first run writes the defaults to disk with 0600 permissions so the
// file can be edited in place afterwards.

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// CaptureConfig controls PNG export through headless Chromium.
type CaptureConfig struct {
	Enabled        bool `yaml:"enabled" json:"enabled"`
	Width          int  `yaml:"width" json:"width"`
	Height         int  `yaml:"height" json:"height"`
	TimeoutSeconds int  `yaml:"timeout_seconds" json:"timeout_seconds"`
}

// Timeout returns TimeoutSeconds as a duration.
func (c CaptureConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// DataPath is the YAML file holding saved plans.
	DataPath string `yaml:"data_path" json:"data_path"`

	// Timezone is the IANA zone calendar export and import work in.
	// Plans themselves carry wall-clock times only.
	Timezone string `yaml:"timezone" json:"timezone"`

	// DefaultTheme is selected before any plan is created.
	DefaultTheme model.Theme `yaml:"default_theme" json:"default_theme"`

	// DefaultStartTime is where starter activities begin ("HH:MM").
	DefaultStartTime string `yaml:"default_start_time" json:"default_start_time"`

	// SeedStarterActivities fills Saturday with the theme's suggestions
	// when a plan is created.
	SeedStarterActivities bool `yaml:"seed_starter_activities" json:"seed_starter_activities"`

	// Autosave is a cron schedule (e.g. "*/5 * * * *") for flushing saved
	// plans to DataPath.
	Autosave string `yaml:"autosave" json:"autosave"`

	// ShareBaseURL prefixes share links. Empty uses the request's host.
	ShareBaseURL string `yaml:"share_base_url" json:"share_base_url"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:                "127.0.0.1:8080",
		DataPath:              "/var/lib/weekendplan/plans.yaml",
		Timezone:              "Local",
		DefaultTheme:          model.ThemeLazy,
		DefaultStartTime:      "09:00",
		SeedStarterActivities: false,
		Autosave:              autosave.DefaultSpec,
		ShareBaseURL:          "",
		LogLevel:              "info",
		Capture: CaptureConfig{
			Enabled:        false,
			Width:          capture.DefaultWidth,
			Height:         capture.DefaultHeight,
			TimeoutSeconds: capture.DefaultTimeoutSec,
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing or invalid values with defaults so partially
// filled configs still behave.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	if c.DataPath == "" {
		c.DataPath = d.DataPath
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if !c.DefaultTheme.Valid() {
		c.DefaultTheme = d.DefaultTheme
	}
	if _, err := timeutil.TimeToMinutes(c.DefaultStartTime); err != nil {
		c.DefaultStartTime = d.DefaultStartTime
	}
	if c.Autosave == "" {
		c.Autosave = d.Autosave
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = d.LogLevel
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = d.Capture.Width
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = d.Capture.Height
	}
	if c.Capture.TimeoutSeconds <= 0 {
		c.Capture.TimeoutSeconds = d.Capture.TimeoutSeconds
	}
	if c.BasicAuth != nil && c.BasicAuth.Username == "" && c.BasicAuth.Password == "" {
		c.BasicAuth = nil
	}
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate reports settings Normalize cannot repair.
func (c *Config) Validate() error {
	if c.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
		}
	}
	if _, err := cron.ParseStandard(c.Autosave); err != nil {
		return fmt.Errorf("config: autosave %q: %w", c.Autosave, err)
	}
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, write the defaults with 0600 perms and
//     return them.
//   - Otherwise unmarshal the YAML and normalize it.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
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

	return &cfg, nil
}

// Save writes cfg to path atomically with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return storage.WriteFileAtomic(path, data, ".weekendplan-config-*.tmp")
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
