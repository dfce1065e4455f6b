// Package config manages the SDK configuration and the .anno directory
// structure. It handles loading, saving, and initializing the workspace
// configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	AnnoDir      = ".anno"
	ConfigFile   = "config"
	DatabaseFile = "anno.db"
)

// Environment overrides.
const (
	EnvToken  = "ANNO_TOKEN"
	EnvAPIURL = "ANNO_API_URL"
)

// DefaultWorkers is the number of parallel transfers when unset.
const DefaultWorkers = 4

// ErrNotInitialized is returned when no .anno directory is found.
var ErrNotInitialized = errors.New("not an anno workspace (or any parent up to root)")

// Config represents the workspace configuration.
type Config struct {
	APIURL         string      `toml:"api_url"`
	TeamID         int         `toml:"team_id"`
	DefaultProject int         `toml:"default_project,omitempty"`
	Workers        int         `toml:"workers,omitempty"`
	Retry          RetryConfig `toml:"retry"`
	path           string      // path to .anno directory
}

// RetryConfig mirrors remote.RetryConfig in TOML-friendly form. Durations
// are Go duration strings such as "500ms".
type RetryConfig struct {
	MaxRetries     int    `toml:"max_retries"`
	InitialBackoff string `toml:"initial_backoff"`
	MaxBackoff     string `toml:"max_backoff"`
}

// DefaultRetry returns the retry settings written by Initialize.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: "500ms",
		MaxBackoff:     "30s",
	}
}

// Backoffs parses the retry durations.
func (r RetryConfig) Backoffs() (initial, max time.Duration, err error) {
	initial, err = time.ParseDuration(r.InitialBackoff)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid retry.initial_backoff: %w", err)
	}
	max, err = time.ParseDuration(r.MaxBackoff)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid retry.max_backoff: %w", err)
	}
	return initial, max, nil
}

// FindAnnoRoot finds the .anno directory by walking up from dir.
func FindAnnoRoot(dir string) (string, error) {
	for {
		annoPath := filepath.Join(dir, AnnoDir)
		if info, err := os.Stat(annoPath); err == nil && info.IsDir() {
			return annoPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotInitialized
		}
		dir = parent
	}
}

// Load loads the configuration of the workspace containing the current
// directory and applies environment overrides.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return LoadFrom(cwd)
}

// LoadFrom loads the configuration of the workspace containing dir.
func LoadFrom(dir string) (*Config, error) {
	annoPath, err := FindAnnoRoot(dir)
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(annoPath, ConfigFile)
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Retry == (RetryConfig{}) {
		cfg.Retry = DefaultRetry()
	}

	cfg.path = annoPath
	return &cfg, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configPath := filepath.Join(c.path, ConfigFile)
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// AnnoPath returns the path to the .anno directory
func (c *Config) AnnoPath() string {
	return c.path
}

// DatabasePath returns the path to the bbolt database
func (c *Config) DatabasePath() string {
	return filepath.Join(c.path, DatabaseFile)
}

// Initialize creates a new .anno directory in dir with initial configuration.
func Initialize(dir, apiURL string, teamID int) (*Config, error) {
	annoPath := filepath.Join(dir, AnnoDir)

	if _, err := os.Stat(annoPath); err == nil {
		return nil, fmt.Errorf("anno workspace already exists")
	}

	if err := os.MkdirAll(annoPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .anno directory: %w", err)
	}

	cfg := &Config{
		APIURL:  apiURL,
		TeamID:  teamID,
		Workers: DefaultWorkers,
		Retry:   DefaultRetry(),
		path:    annoPath,
	}

	if err := cfg.Save(); err != nil {
		// Cleanup on failure
		os.RemoveAll(annoPath)
		return nil, err
	}

	return cfg, nil
}
