package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "Local", cfg.Timezone)
	assert.Equal(t, 30, cfg.SlotMinutes)
	assert.Equal(t, "Filler", cfg.FillerLabel)
	assert.False(t, cfg.Holidays.Enabled)

	start, end, err := cfg.DayWindow()
	require.NoError(t, err)
	assert.Equal(t, 9*60, start)
	assert.Equal(t, 18*60, end)
}

func TestNormalize(t *testing.T) {
	cfg := &Config{}
	cfg.Normalize()

	assert.Equal(t, "Local", cfg.Timezone)
	assert.Equal(t, "09:00", cfg.DayStart)
	assert.Equal(t, "18:00", cfg.DayEnd)
	assert.Equal(t, 30, cfg.SlotMinutes)
	assert.Equal(t, "@hourly", cfg.WatchCron)
}

func TestDayWindow_Invalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DayEnd = "08:00" // before DayStart
	_, _, err := cfg.DayWindow()
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.DayStart = "9am"
	_, _, err = cfg.DayWindow()
	assert.Error(t, err)
}

func TestLoad_CreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Timezone = "Europe/Berlin"
	cfg.FillerLabel = "Slack time"
	cfg.Holidays.Enabled = true
	cfg.Holidays.URL = "https://example.com/holidays.ics"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	loc, err := loaded.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: [broken"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
