// Package config provides configuration loading and structs for the quotebench server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug" env:"QUOTEBENCH_DEBUG"`
	Server  ServerConfig  `yaml:"server"`
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Staging StagingConfig `yaml:"staging"`
	Results ResultsConfig `yaml:"results"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host" env:"QUOTEBENCH_HOST"`
	Port           int           `yaml:"port" env:"QUOTEBENCH_PORT"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// OpenAIConfig holds completion service settings. The API key only ever comes
// from the environment and is never written back to the config file.
type OpenAIConfig struct {
	APIKey      string        `yaml:"-" env:"OPENAI_API_KEY"`
	Model       string        `yaml:"model" env:"QUOTEBENCH_OPENAI_MODEL"`
	BaseURL     string        `yaml:"base_url" env:"QUOTEBENCH_OPENAI_BASE_URL"`
	Temperature *float64      `yaml:"temperature" env:"QUOTEBENCH_OPENAI_TEMPERATURE"`
	Timeout     time.Duration `yaml:"timeout"`
}

// StagingConfig holds where uploads are staged during extraction.
type StagingConfig struct {
	Dir string `yaml:"dir" env:"QUOTEBENCH_STAGING_DIR"`
}

// ResultsConfig bounds the in-memory summary store.
type ResultsConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

// WatchConfig holds inbox watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Recursive   *bool    `yaml:"recursive"`
	OutputDir   string   `yaml:"output_dir"`
	Mode        string   `yaml:"mode"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to false when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return false
}

// Load reads and parses the config file at path, overlays the environment,
// expands paths, and applies defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config
	configDir := "."
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		configDir = filepath.Dir(path)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	ApplyDefaults(&cfg)

	if cfg.Staging.Dir != "" {
		cfg.Staging.Dir = expandPath(cfg.Staging.Dir, configDir)
	}
	if cfg.Watch.OutputDir != "" {
		cfg.Watch.OutputDir = expandPath(cfg.Watch.OutputDir, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// LoadDotEnv loads variables from the given .env files (default ".env") into the
// process environment without overriding variables that are already set.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ErrConfigExists is returned by WriteDefault when path already exists and
// overwriting was not requested.
var ErrConfigExists = errors.New("config file already exists")

// WriteDefault writes a config holding every default to path, creating its
// directory. An existing file is kept unless overwrite is set.
func WriteDefault(path string, overwrite bool) (*Config, error) {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}
	var cfg Config
	ApplyDefaults(&cfg)
	if err := Save(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path. The API key is never written.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		if abs, err := filepath.Abs(filepath.Join(configDir, path)); err == nil {
			return abs
		}
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
