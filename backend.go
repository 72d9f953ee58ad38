package llmbridge

import (
	"context"
	"fmt"
)

// Backend is the opaque capability that performs inference.
type Backend interface {
	// Availability reports whether generation can be used now.
	Availability(ctx context.Context) (State, error)
	// Generate produces a complete string for req or fails. It blocks
	// until the backend finishes.
	Generate(ctx context.Context, req Request) (string, error)
}

// Describer is implemented by backends that can name the model they serve.
type Describer interface {
	Info() ModelInfo
}

// Reasoner is implemented by backends with their own wording for why a
// state is not Ready.
type Reasoner interface {
	Reason(State) string
}

// ConcurrentSafe is implemented by backends that tolerate overlapping calls.
// Backends that do not implement it are serialized by the Bridge.
type ConcurrentSafe interface {
	ConcurrentSafe() bool
}

// Opener lazily constructs a Backend. It is called at most once per Bridge.
type Opener func() (Backend, error)

// Static returns an Opener for an already constructed backend.
func Static(b Backend) Opener {
	return func() (Backend, error) { return b, nil }
}

// ModelInfo describes the model a Bridge can serve.
type ModelInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Provider  string `json:"provider"`
	Available bool   `json:"available"`
	State     State  `json:"state"`
	Reason    string `json:"reason,omitempty"`

	// Metadata carries provider specific details such as quantization.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NoBackend is the backend used when no capability exists.
type NoBackend struct{}

// Availability always reports Unsupported.
func (NoBackend) Availability(context.Context) (State, error) {
	return Unsupported, nil
}

// Generate always fails with ErrUnavailable.
func (NoBackend) Generate(context.Context, Request) (string, error) {
	return "", fmt.Errorf("%w: no backend", ErrUnavailable)
}

// Info names the placeholder model.
func (NoBackend) Info() ModelInfo {
	return ModelInfo{ID: "none", Name: "No on-device model", Provider: "none"}
}

// ConcurrentSafe reports true; the placeholder holds no state.
func (NoBackend) ConcurrentSafe() bool { return true }
