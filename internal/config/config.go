// Package config defines pipebuilder configuration and its defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the root configuration.
type Config struct {
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Daemon    DaemonConfig    `mapstructure:"daemon"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// CatalogConfig controls where block categories come from.
type CatalogConfig struct {
	// Source is "search" (project/user/system files then builtin),
	// "builtin", "file" or "remote".
	Source string `mapstructure:"source"`

	// Path is the catalog file used when Source is "file".
	Path string `mapstructure:"path"`

	// ProjectDir anchors the project-level search path.
	ProjectDir string `mapstructure:"project_dir"`
}

// GeneratorConfig controls script generation.
type GeneratorConfig struct {
	// Mode is "local" (in-process) or "remote" (daemon over gRPC).
	Mode string `mapstructure:"mode"`

	// Address is the daemon address used in remote mode.
	Address string `mapstructure:"address"`

	// Timeout bounds each remote call.
	Timeout time.Duration `mapstructure:"timeout"`

	// DefaultOutput is the suggested output path.
	DefaultOutput string `mapstructure:"default_output"`

	// EmitLocalFiles is the initial state of the "also emit local files" toggle.
	EmitLocalFiles bool `mapstructure:"emit_local_files"`
}

// DaemonConfig controls the generator daemon.
type DaemonConfig struct {
	Hostname         string  `mapstructure:"hostname"`
	Port             int     `mapstructure:"port"`
	RateLimitEnabled bool    `mapstructure:"rate_limit_enabled"`
	RequestsPerSec   float64 `mapstructure:"requests_per_second"`
	Burst            int     `mapstructure:"burst"`
}

// DatabaseConfig controls the generation history store.
type DatabaseConfig struct {
	// Path is the SQLite file. Empty disables history.
	Path string `mapstructure:"path"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// TUIConfig controls the terminal UI.
type TUIConfig struct {
	Theme string `mapstructure:"theme"`
}

// Catalog sources.
const (
	CatalogSourceSearch  = "search"
	CatalogSourceBuiltin = "builtin"
	CatalogSourceFile    = "file"
	CatalogSourceRemote  = "remote"
)

// Generator modes.
const (
	GeneratorModeLocal  = "local"
	GeneratorModeRemote = "remote"
)

// DefaultDaemonPort is the default generator daemon port.
const DefaultDaemonPort = 50161

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	dataDir := DefaultDataDir()
	return &Config{
		Catalog: CatalogConfig{
			Source: CatalogSourceSearch,
		},
		Generator: GeneratorConfig{
			Mode:          GeneratorModeLocal,
			Address:       fmt.Sprintf("127.0.0.1:%d", DefaultDaemonPort),
			Timeout:       30 * time.Second,
			DefaultOutput: filepath.Join("jobs", "run.py"),
		},
		Daemon: DaemonConfig{
			Hostname:         "127.0.0.1",
			Port:             DefaultDaemonPort,
			RateLimitEnabled: true,
			RequestsPerSec:   5,
			Burst:            10,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(dataDir, "pipebuilder.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			File:   filepath.Join(dataDir, "pipebuilder.log"),
		},
		TUI: TUIConfig{
			Theme: "default",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs []error

	switch c.Catalog.Source {
	case CatalogSourceSearch, CatalogSourceBuiltin, CatalogSourceRemote:
	case CatalogSourceFile:
		if strings.TrimSpace(c.Catalog.Path) == "" {
			errs = append(errs, errors.New("catalog.path is required when catalog.source is file"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown catalog.source %q", c.Catalog.Source))
	}

	switch c.Generator.Mode {
	case GeneratorModeLocal:
	case GeneratorModeRemote:
		if strings.TrimSpace(c.Generator.Address) == "" {
			errs = append(errs, errors.New("generator.address is required in remote mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown generator.mode %q", c.Generator.Mode))
	}
	if c.Generator.Timeout < 0 {
		errs = append(errs, errors.New("generator.timeout must not be negative"))
	}

	if c.Daemon.Port < 0 || c.Daemon.Port > 65535 {
		errs = append(errs, fmt.Errorf("daemon.port %d out of range", c.Daemon.Port))
	}
	if c.Daemon.RateLimitEnabled && (c.Daemon.RequestsPerSec <= 0 || c.Daemon.Burst <= 0) {
		errs = append(errs, errors.New("daemon rate limit requires positive requests_per_second and burst"))
	}

	return errors.Join(errs...)
}

// DefaultConfigDir returns ~/.config/pipebuilder.
func DefaultConfigDir() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); dir != "" {
		return filepath.Join(dir, "pipebuilder")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", ".pipebuilder")
	}
	return filepath.Join(home, ".config", "pipebuilder")
}

// DefaultDataDir returns ~/.local/share/pipebuilder.
func DefaultDataDir() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); dir != "" {
		return filepath.Join(dir, "pipebuilder")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", ".pipebuilder")
	}
	return filepath.Join(home, ".local", "share", "pipebuilder")
}
