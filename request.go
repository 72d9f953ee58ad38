package llmbridge

import "fmt"

// DefaultMaxTokens is used by hosts that do not specify a bound.
const DefaultMaxTokens = 256

// Request is a single completion attempt.
type Request struct {
	// Prompt is passed to the backend unchanged. Empty is allowed.
	Prompt string `json:"prompt"`

	// Temperature is forwarded as is; conventionally within [0.0, 2.0].
	// Backends clamp or reject values outside their supported range.
	Temperature float64 `json:"temperature"`

	// MaxTokens bounds the generated length. The backend enforces it.
	MaxTokens int `json:"max_tokens"`
}

// Validate checks the caller side of the request contract.
func (r Request) Validate() error {
	if r.MaxTokens <= 0 {
		return fmt.Errorf("%w: max tokens must be positive, got %d", ErrInvalidRequest, r.MaxTokens)
	}
	return nil
}
