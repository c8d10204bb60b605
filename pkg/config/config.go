package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cuemby/reportwatch/pkg/types"
	"gopkg.in/yaml.v3"
)

// Defaults
const (
	DefaultHost     = "localhost"
	DefaultPort     = 5000
	DefaultInterval = 2.0
	DefaultDataDir  = ".reportwatch"
)

// AutoRefresh configures periodic fetching
type AutoRefresh struct {
	Enabled bool `yaml:"enabled"`
	// Interval is in seconds and may be fractional
	Interval float64 `yaml:"interval"`
}

// Log configures logging
type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Config is the viewer's configuration file
type Config struct {
	Host             string       `yaml:"host"`
	Port             uint16       `yaml:"port"`
	ConnectOnStartup bool         `yaml:"connect_on_startup"`
	Source           types.Source `yaml:"source"`
	AutoRefresh      AutoRefresh  `yaml:"auto_refresh"`
	Filter           string       `yaml:"filter,omitempty"`
	DataDir          string       `yaml:"data_dir"`
	MetricsAddr      string       `yaml:"metrics_addr,omitempty"`
	Log              Log          `yaml:"log"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Host:   DefaultHost,
		Port:   DefaultPort,
		Source: types.SourceAnnouncements,
		AutoRefresh: AutoRefresh{
			Enabled:  true,
			Interval: DefaultInterval,
		},
		DataDir: DefaultDataDir,
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads path on top of the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks field values and normalizes the source name
func (c *Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port == 0 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	source, err := types.ParseSource(string(c.Source))
	if err != nil {
		return err
	}
	c.Source = source
	if c.AutoRefresh.Interval <= 0 {
		return fmt.Errorf("auto_refresh.interval must be positive, got %v", c.AutoRefresh.Interval)
	}
	return nil
}

// Addr returns host:port
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

// StorePath returns the category database path inside DataDir
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, "categories.db")
}
