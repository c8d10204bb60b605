package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cuemby/reportwatch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, uint16(5000), cfg.Port)
	assert.False(t, cfg.ConnectOnStartup)
	assert.Equal(t, types.SourceAnnouncements, cfg.Source)
	assert.True(t, cfg.AutoRefresh.Enabled)
	assert.Equal(t, 2.0, cfg.AutoRefresh.Interval)
	assert.Equal(t, "localhost:5000", cfg.Addr())
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: 10.0.0.5
source: Reports
auto_refresh:
  interval: 0.5
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.Host)
	assert.Equal(t, uint16(5000), cfg.Port, "unset fields keep defaults")
	assert.Equal(t, types.SourceReports, cfg.Source, "source is normalized")
	assert.Equal(t, 0.5, cfg.AutoRefresh.Interval)
	assert.True(t, cfg.AutoRefresh.Enabled)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "host: [unterminated"},
		{"bad source", "source: combat"},
		{"zero port", "port: 0"},
		{"negative interval", "auto_refresh: {interval: -1}"},
		{"empty host", "host: \"\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.ConnectOnStartup = true
	cfg.Filter = "caravan"
	cfg.Log.JSON = true
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSettingsNotifications(t *testing.T) {
	s := NewSettings(Default())

	var keys []Key
	s.Subscribe(func(k Key) { keys = append(keys, k) })

	s.SetSource(types.SourceAnnouncements)
	s.SetInterval(2.0)
	s.SetAutoRefresh(true)
	assert.Empty(t, keys, "setting a value to itself is silent")

	s.SetSource(types.SourceReports)
	s.SetInterval(0.25)
	s.SetAutoRefresh(false)
	assert.Equal(t, []Key{KeySource, KeyInterval, KeyAutoRefresh}, keys)

	assert.Equal(t, types.SourceReports, s.Source())
	assert.Equal(t, 0.25, s.Interval())
	assert.False(t, s.AutoRefresh())
}

func TestSettingsSubscriberMayReadValues(t *testing.T) {
	s := NewSettings(Default())

	var seen types.Source
	s.Subscribe(func(k Key) {
		if k == KeySource {
			seen = s.Source()
		}
	})

	s.SetSource(types.SourceReports)
	assert.Equal(t, types.SourceReports, seen)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "source", KeySource.String())
	assert.Equal(t, "auto_refresh.interval", KeyInterval.String())
	assert.Equal(t, "auto_refresh.enabled", KeyAutoRefresh.String())
}
