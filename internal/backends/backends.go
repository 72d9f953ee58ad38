// Package backends turns configuration into an llmbridge.Opener.
package backends

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/blacktop/go-llmbridge"
	"github.com/blacktop/go-llmbridge/backend/ollama"
	"github.com/blacktop/go-llmbridge/backend/shim"
	"github.com/blacktop/go-llmbridge/internal/config"
)

// Opener returns an Opener for cfg. Nothing is loaded or contacted until
// the returned Opener is called.
func Opener(cfg *config.Config, log *slog.Logger) llmbridge.Opener {
	return func() (llmbridge.Backend, error) {
		return Open(cfg, log)
	}
}

// Open constructs the configured backend.
//
// "auto" tries the native shim first, then Ollama if a URL is configured,
// and finally falls back to the no-op backend that reports Unsupported.
func Open(cfg *config.Config, log *slog.Logger) (llmbridge.Backend, error) {
	if log == nil {
		log = slog.Default()
	}
	switch cfg.Backend {
	case config.BackendNone:
		return llmbridge.NoBackend{}, nil
	case config.BackendNative:
		lib, err := openNative(cfg.Native, log)
		if err != nil {
			return nil, err
		}
		return lib, nil
	case config.BackendOllama:
		return Ollama(cfg.Ollama), nil
	case config.BackendAuto, "":
		lib, err := openNative(cfg.Native, log)
		if err == nil {
			return lib, nil
		}
		log.Debug("native shim unavailable", "error", err)
		if cfg.Ollama.URL != "" {
			log.Debug("using ollama backend", "url", cfg.Ollama.URL, "model", cfg.Ollama.Model)
			return Ollama(cfg.Ollama), nil
		}
		log.Debug("no backend available")
		return llmbridge.NoBackend{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func openNative(cfg config.NativeConfig, log *slog.Logger) (*shim.Library, error) {
	d, err := shim.DialectByName(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	var extra []string
	if cfg.Library != "" {
		extra = append(extra, cfg.Library)
	}
	path, err := shim.Find(d, extra...)
	if err != nil {
		return nil, err
	}
	lib, err := shim.Open(path, d)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded native shim", "path", path, "dialect", d.Name)
	return lib, nil
}

// Ollama builds an Ollama client from its config section.
func Ollama(cfg config.OllamaConfig) *ollama.Client {
	return ollama.New(&ollama.Config{
		URL:     cfg.URL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	})
}
