// Package config handles user configuration and path validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/bibapa/config.yml.
// Include flags are pointers so an absent key keeps the built-in default.
type GlobalConfig struct {
	OutputDir           string `yaml:"output_dir,omitempty"`
	Format              string `yaml:"format,omitempty"`
	IncludePublications *bool  `yaml:"include_publications,omitempty"`
	IncludeConferences  *bool  `yaml:"include_conferences,omitempty"`
	IncludePatents      *bool  `yaml:"include_patents,omitempty"`
	LogLevel            string `yaml:"log_level,omitempty"`
	LogFormat           string `yaml:"log_format,omitempty"`
	CacheDir            string `yaml:"cache_dir,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "bibapa"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// CacheDBFile is the record cache database name.
	CacheDBFile = "records.db"

	DefaultFormat   = "docx"
	DefaultLogLevel = "warn"
)

// Environment variables that override the config file.
const (
	EnvOutputDir = "BIBAPA_OUTPUT_DIR"
	EnvFormat    = "BIBAPA_FORMAT"
	EnvLogLevel  = "BIBAPA_LOG_LEVEL"
	EnvCacheDir  = "BIBAPA_CACHE_DIR"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bibapa/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file, then applies
// environment overrides (including those from a .env file in the working
// directory). Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	// .env is optional
	_ = godotenv.Load()

	cfg := &GlobalConfig{}
	if path := GlobalConfigPath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if cfg.OutputDir != "" {
		cfg.OutputDir = ExpandPath(cfg.OutputDir)
	}
	if cfg.CacheDir != "" {
		cfg.CacheDir = ExpandPath(cfg.CacheDir)
	}

	globalConfigCache = cfg
	return cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

func (c *GlobalConfig) applyEnv() {
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		c.Format = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.CacheDir = v
	}
}

// FormatOrDefault returns the configured output format, or docx.
func (c *GlobalConfig) FormatOrDefault() string {
	if c.Format == "" {
		return DefaultFormat
	}
	return c.Format
}

// LogLevelOrDefault returns the configured log level, or warn.
func (c *GlobalConfig) LogLevelOrDefault() string {
	if c.LogLevel == "" {
		return DefaultLogLevel
	}
	return c.LogLevel
}

// Includes returns the configured include flags. Unset flags default to true.
func (c *GlobalConfig) Includes() (publications, conferences, patents bool) {
	return boolOr(c.IncludePublications, true),
		boolOr(c.IncludeConferences, true),
		boolOr(c.IncludePatents, true)
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// CachePath returns the directory holding the record cache.
// Uses the configured cache_dir, else $XDG_CACHE_HOME/bibapa, else ~/.cache/bibapa.
func (c *GlobalConfig) CachePath() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), GlobalConfigDir)
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, GlobalConfigDir)
}

// CacheDBPath returns the path to the record cache database.
func (c *GlobalConfig) CacheDBPath() string {
	return filepath.Join(c.CachePath(), CacheDBFile)
}
