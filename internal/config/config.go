package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ICSConfig describes a single ICS subscription whose events are imported
// as sessions.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// LayoutConfig is the vertical scale of a day column.
type LayoutConfig struct {
	// Baseline is the HHMM value drawn at the top of the column.
	Baseline int `yaml:"baseline" json:"baseline"`
	// OffsetFactor scales start times into a vertical offset.
	OffsetFactor float64 `yaml:"offset_factor" json:"offset_factor"`
	// ExtentFactor scales durations into a block height.
	ExtentFactor float64 `yaml:"extent_factor" json:"extent_factor"`
}

// CaptureConfig controls the headless preview screenshot.
type CaptureConfig struct {
	// URL of the page to capture. Empty means the local server root.
	URL string `yaml:"url" json:"url"`
	// Output is where the PNG is written.
	Output string `yaml:"output" json:"output"`
	// Cron, if set, schedules periodic captures.
	Cron   string `yaml:"cron" json:"cron"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// WeekStart controls which weekday opens the week view. Supported values:
	//   - "monday" (default)
	//   - "sunday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is the cron schedule (e.g. "*/15 * * * *") for
	// re-importing ICS subscriptions.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// CacheDir stores ICS fetch caches.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// SeedFile, if set, replaces the built-in seed sessions.
	SeedFile string `yaml:"seed_file,omitempty" json:"seed_file,omitempty"`

	Layout  LayoutConfig  `yaml:"layout" json:"layout"`
	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// ICS is the list of subscriptions imported into the session store.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen      = "127.0.0.1:8080"
	defaultRefreshCron = "*/15 * * * *"
	defaultCacheDir    = "/var/lib/sessioncal/ics-cache"
	defaultCaptureOut  = "/var/lib/sessioncal/preview.png"
)

// DefaultLayout is the stock day-column scale: 12:00 at the top.
var DefaultLayout = LayoutConfig{
	Baseline:     1200,
	OffsetFactor: 0.5,
	ExtentFactor: 0.8,
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		WeekStart:   "monday",
		RefreshCron: defaultRefreshCron,
		LogLevel:    "info",
		CacheDir:    defaultCacheDir,
		Layout:      DefaultLayout,
		Capture: CaptureConfig{
			Output: defaultCaptureOut,
			Width:  1280,
			Height: 960,
		},
		ICS:       []ICSConfig{},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = "monday"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	// A zero factor would collapse every block; treat the section as unset.
	if c.Layout.OffsetFactor == 0 || c.Layout.ExtentFactor == 0 {
		c.Layout = DefaultLayout
	}
	if c.Capture.Output == "" {
		c.Capture.Output = defaultCaptureOut
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = 1280
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = 960
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
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
//   - normalize defaults
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

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory (0700) if needed.
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

	tmp, err := os.CreateTemp(dir, ".sessioncal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience wrapper around the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
