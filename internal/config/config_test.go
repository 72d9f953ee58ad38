package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LLMBRIDGE_BACKEND", "LLMBRIDGE_NATIVE_LIBRARY", "LLMBRIDGE_NATIVE_DIALECT",
		"LLMBRIDGE_OLLAMA_URL", "LLMBRIDGE_OLLAMA_API_KEY", "LLMBRIDGE_OLLAMA_MODEL",
		"LLMBRIDGE_LOG_LEVEL",
	} {
		if v, ok := os.LookupEnv(k); ok {
			os.Unsetenv(k)
			t.Cleanup(func() { os.Setenv(k, v) })
		}
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
backend = "native"

[native]
library = "/opt/shim/libFMShim.dylib"
dialect = "apple"

[ollama]
url = ""
timeout_secs = 30

[log]
level = "debug"
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendNative, cfg.Backend)
	assert.Equal(t, "/opt/shim/libFMShim.dylib", cfg.Native.Library)
	assert.Equal(t, "apple", cfg.Native.Dialect)
	assert.Empty(t, cfg.Ollama.URL)
	assert.Equal(t, "llama3.2", cfg.Ollama.Model, "unset keys keep defaults")
	assert.Equal(t, 30, cfg.Ollama.TimeoutSecs)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLMBRIDGE_BACKEND", "ollama")
	t.Setenv("LLMBRIDGE_OLLAMA_URL", "http://gpu-box:11434")
	t.Setenv("LLMBRIDGE_OLLAMA_MODEL", "qwen2.5")
	t.Setenv("LLMBRIDGE_LOG_LEVEL", "info")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, BackendOllama, cfg.Backend)
	assert.Equal(t, "http://gpu-box:11434", cfg.Ollama.URL)
	assert.Equal(t, "qwen2.5", cfg.Ollama.Model)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		data string
	}{
		{"bad toml", `backend = `},
		{"unknown backend", `backend = "cloud"`},
		{"unknown dialect", "[native]\ndialect = \"linux\""},
		{"zero timeout", "[ollama]\ntimeout_secs = 0"},
		{"bad level", "[log]\nlevel = \"loud\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("LLMBRIDGE_CONFIG", "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", Path())

	t.Setenv("LLMBRIDGE_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "llmbridge", "config.toml"), Path())
}
