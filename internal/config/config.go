package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "config/config.yaml"

type Config struct {
	Server    Server    `yaml:"server"`
	Storage   Storage   `yaml:"storage"`
	Download  Download  `yaml:"download"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Site      Site      `yaml:"site"`
	Stats     Stats     `yaml:"stats"`
	Mirror    Mirror    `yaml:"mirror"`
	Log       Log       `yaml:"log"`
}

type Server struct {
	Port       int  `yaml:"port"`
	TrustProxy bool `yaml:"trust_proxy"` // honor X-Forwarded-For / X-Real-IP
}

// Storage locates the package store. PackagesDir and DataDir are relative
// to Path.
type Storage struct {
	Path        string `yaml:"path"`
	PackagesDir string `yaml:"packages_dir"`
	DataDir     string `yaml:"data_dir"`
}

type Download struct {
	CacheMaxAge time.Duration `yaml:"cache_max_age"`
}

type RateLimit struct {
	RPS   int `yaml:"rps"`
	Burst int `yaml:"burst"`
}

// Site holds the text shown on the HTML index page.
type Site struct {
	Title          string `yaml:"title"`
	Tagline        string `yaml:"tagline"`
	InstallCommand string `yaml:"install_command"`
}

type Stats struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // directory holding the database
}

// Mirror keeps the package store in sync with a git remote. Mirroring is
// disabled when URL is empty.
type Mirror struct {
	URL      string        `yaml:"url"`
	Branch   string        `yaml:"branch"`
	LFS      bool          `yaml:"lfs"`
	Interval time.Duration `yaml:"interval"`
}

type Log struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Filename   string `yaml:"filename"`    // log file path, stdout only when empty
	MaxSize    int    `yaml:"max_size"`    // megabytes
	MaxBackups int    `yaml:"max_backups"` // number of backups
	MaxAge     int    `yaml:"max_age"`     // days
	Compress   bool   `yaml:"compress"`    // compress rotated files
}

// Default returns the configuration used for unset values.
func Default() *Config {
	return &Config{
		Server: Server{Port: 9000},
		Storage: Storage{
			Path:        "repo",
			PackagesDir: "packages",
			DataDir:     "packagedata",
		},
		Download:  Download{CacheMaxAge: 24 * time.Hour},
		RateLimit: RateLimit{RPS: 10, Burst: 20},
		Site: Site{
			Title:          "Odd Package Manager Repository",
			Tagline:        "A lightweight package manager for odd systems",
			InstallCommand: "curl -sSL opm.oddbyte.dev/opminstall.sh > opminstall.sh && sh opminstall.sh",
		},
		Stats:  Stats{Path: "data"},
		Mirror: Mirror{Interval: time.Hour},
		Log: Log{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// Load loads the configuration from the default config file
func Load() (*Config, error) {
	return LoadFromFile(DefaultPath)
}

// LoadFromFile loads the configuration from the specified file. Values
// missing from the file keep their defaults, and a missing file yields
// the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Storage.Path == "" {
		return errors.New("storage path is required")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("invalid rate limit: rps=%d burst=%d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	if c.Download.CacheMaxAge < 0 {
		return fmt.Errorf("invalid download cache max age: %s", c.Download.CacheMaxAge)
	}
	if c.Mirror.URL != "" && c.Mirror.Interval <= 0 {
		return fmt.Errorf("invalid mirror interval: %s", c.Mirror.Interval)
	}
	return nil
}

// StatsDBPath returns the location of the download statistics database.
func (c *Config) StatsDBPath() string {
	return filepath.Join(c.Stats.Path, "opm-repo.db")
}

// EnsureDirs creates the directories the server writes to.
func (c *Config) EnsureDirs() error {
	dirs := []string{c.Storage.Path}
	if c.Stats.Enabled {
		dirs = append(dirs, c.Stats.Path)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
