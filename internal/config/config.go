package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// HolidayFeedConfig describes the remote holiday calendar subscription.
type HolidayFeedConfig struct {
	// Enabled toggles holiday fetching for a run; the CLI -holidays flag
	// overrides it.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// URL is the ICS endpoint serving full-day holiday events.
	URL string `yaml:"url" json:"url"`
	// CacheDir is where conditional-request metadata and bodies are kept.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA timezone the target range and all output times
	// are expressed in (e.g. "Europe/Berlin"). "Local" uses the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// DayStart / DayEnd bound the daily slot catalogue, "HH:MM". Slots are
	// generated from DayStart up to but not including DayEnd.
	DayStart string `yaml:"day_start" json:"day_start"`
	DayEnd   string `yaml:"day_end" json:"day_end"`

	// SlotMinutes is the width of one packing slot.
	SlotMinutes int `yaml:"slot_minutes" json:"slot_minutes"`

	// FillerLabel titles the placeholder events generated for slots left
	// open after packing.
	FillerLabel string `yaml:"filler_label" json:"filler_label"`

	// HolidayLabel titles materialized holiday events. Empty keeps each
	// holiday's own summary.
	HolidayLabel string `yaml:"holiday_label" json:"holiday_label"`

	// Holidays configures the remote holiday feed.
	Holidays HolidayFeedConfig `yaml:"holidays" json:"holidays"`

	// WatchCron is a cron-style schedule string used by -watch to re-run
	// the pipeline periodically.
	WatchCron string `yaml:"watch" json:"watch"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:     "Local",
		DayStart:     "09:00",
		DayEnd:       "18:00",
		SlotMinutes:  30,
		FillerLabel:  "Filler",
		HolidayLabel: "",
		Holidays: HolidayFeedConfig{
			Enabled:  false,
			URL:      "",
			CacheDir: "./var/holiday-cache",
		},
		WatchCron: "@hourly",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.DayStart == "" {
		c.DayStart = "09:00"
	}
	if c.DayEnd == "" {
		c.DayEnd = "18:00"
	}
	if c.SlotMinutes <= 0 {
		c.SlotMinutes = 30
	}
	if c.FillerLabel == "" {
		c.FillerLabel = "Filler"
	}
	if c.Holidays.CacheDir == "" {
		c.Holidays.CacheDir = "./var/holiday-cache"
	}
	if c.WatchCron == "" {
		c.WatchCron = "@hourly"
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DayWindow parses DayStart/DayEnd into minutes from midnight.
func (c *Config) DayWindow() (startMin, endMin int, err error) {
	startMin, err = parseClock(c.DayStart)
	if err != nil {
		return 0, 0, fmt.Errorf("config: invalid day_start %q: %w", c.DayStart, err)
	}
	endMin, err = parseClock(c.DayEnd)
	if err != nil {
		return 0, 0, fmt.Errorf("config: invalid day_end %q: %w", c.DayEnd, err)
	}
	if endMin <= startMin {
		return 0, 0, fmt.Errorf("config: day_end %q is not after day_start %q", c.DayEnd, c.DayStart)
	}
	return startMin, endMin, nil
}

func parseClock(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
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
	tmp, err := os.CreateTemp(dir, ".icalmove-config-*.tmp")
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

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}
