package llmbridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Bridge owns the process-scoped backend handle and implements the probe
// and generate halves of the contract. It is safe for concurrent use.
//
// The backend is opened lazily on the first Probe or Generate and is never
// closed by the Bridge.
type Bridge struct {
	open Opener
	log  *slog.Logger

	once    sync.Once
	backend Backend
	openErr error

	serialize bool
	mu        sync.Mutex // guards backend use when serialize is set
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used for degraded paths.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

// New returns a Bridge that will construct its backend with open.
// A nil open yields a Bridge that always reports Unsupported.
func New(open Opener, opts ...Option) *Bridge {
	if open == nil {
		open = Static(NoBackend{})
	}
	b := &Bridge{
		open: open,
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Backend returns the opened backend, opening it if needed.
func (b *Bridge) Backend() (Backend, error) {
	b.once.Do(b.openBackend)
	return b.backend, b.openErr
}

func (b *Bridge) openBackend() {
	defer func() {
		if r := recover(); r != nil {
			b.backend = nil
			b.openErr = fmt.Errorf("backend open panicked: %v", r)
		}
	}()
	be, err := b.open()
	if err == nil && be == nil {
		err = fmt.Errorf("backend opener returned nil")
	}
	if err != nil {
		b.openErr = err
		b.log.Warn("backend unavailable", "error", err)
		return
	}
	b.backend = be
	b.serialize = true
	if cs, ok := be.(ConcurrentSafe); ok && cs.ConcurrentSafe() {
		b.serialize = false
	}
	b.log.Debug("backend opened", "type", fmt.Sprintf("%T", be), "serialized", b.serialize)
}

func (b *Bridge) lock() func() {
	if !b.serialize {
		return func() {}
	}
	b.mu.Lock()
	return b.mu.Unlock
}

// Probe classifies the backend's current availability. It never returns a
// value outside the four defined states: every failure degrades to
// Unsupported.
func (b *Bridge) Probe(ctx context.Context) State {
	be, err := b.Backend()
	if err != nil {
		return Unsupported
	}
	return b.probe(ctx, be)
}

func (b *Bridge) probe(ctx context.Context, be Backend) (state State) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("availability check panicked", "panic", r)
			state = Unsupported
		}
	}()

	unlock := b.lock()
	defer unlock()

	s, err := be.Availability(ctx)
	if err != nil {
		b.log.Debug("availability check failed", "error", err)
		return Unsupported
	}
	if !s.Valid() {
		b.log.Debug("availability check returned unknown state", "code", int32(s))
		return Unsupported
	}
	return s
}

// Generate runs one completion. On failure the returned error is an *Error
// whose Kind tells capability absence, backend failure and caller error
// apart. A failed call never returns partial output.
func (b *Bridge) Generate(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", &Error{Op: "generate", Kind: KindCaller, Err: err}
	}

	be, err := b.Backend()
	if err != nil {
		return "", &Error{Op: "generate", Kind: KindUnavailable, State: Unsupported, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	if s := b.probe(ctx, be); s != Ready {
		return "", &Error{Op: "generate", Kind: KindUnavailable, State: s, Err: ErrUnavailable}
	}

	text, err := b.generate(ctx, be, req)
	if err != nil {
		b.log.Debug("generation failed", "error", err, "max_tokens", req.MaxTokens)
		return "", &Error{Op: "generate", Kind: KindBackend, State: Ready, Err: fmt.Errorf("%w: %w", ErrGenerationFailed, err)}
	}
	return text, nil
}

func (b *Bridge) generate(ctx context.Context, be Backend, req Request) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("backend panicked: %v", r)
		}
	}()

	unlock := b.lock()
	defer unlock()
	return be.Generate(ctx, req)
}

// Model describes the served model together with its current availability.
func (b *Bridge) Model(ctx context.Context) ModelInfo {
	info := NoBackend{}.Info()
	state := b.Probe(ctx)
	reason := state.Reason()
	if be, err := b.Backend(); err == nil {
		if d, ok := be.(Describer); ok {
			info = d.Info()
		}
		if r, ok := be.(Reasoner); ok && state != Ready {
			reason = r.Reason(state)
		}
	}
	info.State = state
	info.Available = state == Ready
	info.Reason = reason
	return info
}
