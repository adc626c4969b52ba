package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PIPEBUILDER_GENERATOR_MODE.
const EnvPrefix = "PIPEBUILDER"

// Load reads configuration from path (or the default search locations when
// path is empty) and applies environment overrides. A missing config file is
// not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(filepath.Join(".", ".pipebuilder"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound):
		case path != "" && errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("config file %s not found", path)
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("catalog.source", cfg.Catalog.Source)
	v.SetDefault("catalog.path", cfg.Catalog.Path)
	v.SetDefault("catalog.project_dir", cfg.Catalog.ProjectDir)

	v.SetDefault("generator.mode", cfg.Generator.Mode)
	v.SetDefault("generator.address", cfg.Generator.Address)
	v.SetDefault("generator.timeout", cfg.Generator.Timeout)
	v.SetDefault("generator.default_output", cfg.Generator.DefaultOutput)
	v.SetDefault("generator.emit_local_files", cfg.Generator.EmitLocalFiles)

	v.SetDefault("daemon.hostname", cfg.Daemon.Hostname)
	v.SetDefault("daemon.port", cfg.Daemon.Port)
	v.SetDefault("daemon.rate_limit_enabled", cfg.Daemon.RateLimitEnabled)
	v.SetDefault("daemon.requests_per_second", cfg.Daemon.RequestsPerSec)
	v.SetDefault("daemon.burst", cfg.Daemon.Burst)

	v.SetDefault("database.path", cfg.Database.Path)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)

	v.SetDefault("tui.theme", cfg.TUI.Theme)
}

func (c *Config) expandPaths() {
	c.Catalog.Path = expandHome(c.Catalog.Path)
	c.Catalog.ProjectDir = expandHome(c.Catalog.ProjectDir)
	c.Database.Path = expandHome(c.Database.Path)
	c.Logging.File = expandHome(c.Logging.File)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ErrConfigExists is returned by WriteDefault when the file is present and
// overwrite was not requested.
var ErrConfigExists = errors.New("config file already exists")

// WriteDefault writes DefaultConfigYAML to path, creating parent
// directories. An existing file is only replaced when overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	path = expandHome(strings.TrimSpace(path))
	if path == "" {
		return errors.New("config path is required")
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultConfigPath returns the config file used when --config is unset.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}
