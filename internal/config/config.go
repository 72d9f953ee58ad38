// Package config handles llmbridge configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Backend names accepted in the "backend" key.
const (
	BackendAuto   = "auto"
	BackendNative = "native"
	BackendOllama = "ollama"
	BackendNone   = "none"
)

// Config is the bridge configuration.
type Config struct {
	Backend string       `toml:"backend"`
	Native  NativeConfig `toml:"native"`
	Ollama  OllamaConfig `toml:"ollama"`
	Log     LogConfig    `toml:"log"`
}

// NativeConfig selects the platform shim library.
type NativeConfig struct {
	// Library is the shim path. Empty searches the default locations.
	Library string `toml:"library"`
	// Dialect is "apple", "windows" or "bridge". Empty picks by GOOS.
	Dialect string `toml:"dialect"`
}

// OllamaConfig configures the Ollama fallback backend.
type OllamaConfig struct {
	URL         string `toml:"url"` // empty disables Ollama
	APIKey      string `toml:"api_key"`
	Model       string `toml:"model"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // text or json
	File   string `toml:"file"`   // empty logs to stderr
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendAuto,
		Ollama: OllamaConfig{
			URL:         "http://localhost:11434",
			Model:       "llama3.2",
			TimeoutSecs: 120,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Path returns the configuration file location: $LLMBRIDGE_CONFIG, else
// $XDG_CONFIG_HOME/llmbridge/config.toml, else ~/.config/llmbridge/config.toml.
func Path() string {
	if p := os.Getenv("LLMBRIDGE_CONFIG"); p != "" {
		return p
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "llmbridge", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "llmbridge.toml")
	}
	return filepath.Join(home, ".config", "llmbridge", "config.toml")
}

// Load loads the configuration from the given path and applies environment
// overrides. If the file doesn't exist, defaults are used.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
	}

	cfg.applyEnv()
	cfg.Native.Library = expandHome(cfg.Native.Library)
	cfg.Log.File = expandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	for env, dst := range map[string]*string{
		"LLMBRIDGE_BACKEND":        &c.Backend,
		"LLMBRIDGE_NATIVE_LIBRARY": &c.Native.Library,
		"LLMBRIDGE_NATIVE_DIALECT": &c.Native.Dialect,
		"LLMBRIDGE_OLLAMA_URL":     &c.Ollama.URL,
		"LLMBRIDGE_OLLAMA_API_KEY": &c.Ollama.APIKey,
		"LLMBRIDGE_OLLAMA_MODEL":   &c.Ollama.Model,
		"LLMBRIDGE_LOG_LEVEL":      &c.Log.Level,
	} {
		if v, ok := os.LookupEnv(env); ok {
			*dst = strings.TrimSpace(v)
		}
	}
}

// Validate rejects unknown names and bad values.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendAuto, BackendNative, BackendOllama, BackendNone:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	switch c.Native.Dialect {
	case "", "apple", "windows", "bridge":
	default:
		return fmt.Errorf("unknown native dialect %q", c.Native.Dialect)
	}
	if c.Ollama.TimeoutSecs <= 0 {
		return fmt.Errorf("ollama timeout_secs must be positive, got %d", c.Ollama.TimeoutSecs)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
