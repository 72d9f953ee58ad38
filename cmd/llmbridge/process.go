package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"unsafe"

	"github.com/blacktop/go-llmbridge"
	"github.com/blacktop/go-llmbridge/internal/backends"
	"github.com/blacktop/go-llmbridge/internal/config"
	"github.com/blacktop/go-llmbridge/internal/cstr"
	"github.com/blacktop/go-llmbridge/internal/logging"
)

// process is the single process-scoped context shared by every C entry
// point. The backend inside its Bridge is opened on first use.
type process struct {
	bridge *llmbridge.Bridge
	log    *slog.Logger
}

// current returns the process context, building it on first call. The log
// file (if any) stays open until the process exits.
var current = sync.OnceValue(func() *process {
	cfg, err := config.Load(config.Path())
	if err != nil {
		log := logging.NewWriter(os.Stderr, config.LogConfig{Level: "warn"})
		log.Warn("invalid configuration, on-device generation disabled", "error", err)
		return newProcess(nil, log)
	}
	log, _ := logging.New(cfg.Log)
	return newProcess(backends.Opener(cfg, log), log)
})

func newProcess(open llmbridge.Opener, log *slog.Logger) *process {
	return &process{
		bridge: llmbridge.New(open, llmbridge.WithLogger(log)),
		log:    log,
	}
}

func (p *process) availability() int32 {
	return p.bridge.Probe(context.Background()).Code()
}

// generate runs one completion and returns a malloc'ed C string owned by
// the caller, or nil. Errors never cross the boundary.
func (p *process) generate(prompt string, temperature float64, maxTokens int) unsafe.Pointer {
	text, err := p.bridge.Generate(context.Background(), llmbridge.Request{
		Prompt:      prompt,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		if llmbridge.IsCallerError(err) {
			p.log.Warn("rejected generate call", "error", err)
		} else {
			p.log.Debug("no completion", "error", err)
		}
		return nil
	}
	return p.alloc(text)
}

// modelInfo returns the served model as a malloc'ed JSON C string.
func (p *process) modelInfo() unsafe.Pointer {
	data, err := json.Marshal(p.bridge.Model(context.Background()))
	if err != nil {
		p.log.Error("failed to marshal model info", "error", err)
		return nil
	}
	return p.alloc(string(data))
}

func (p *process) alloc(s string) unsafe.Pointer {
	ptr, err := cstr.Alloc(s)
	if err != nil {
		// Truncating at the NUL would hand back a partial completion.
		p.log.Warn("completion not representable as a C string", "error", err)
		return nil
	}
	return ptr
}
