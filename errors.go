package llmbridge

import (
	"errors"
	"fmt"
)

// Sentinel errors for bridge operations.
var (
	// ErrUnavailable indicates the capability is absent, disabled or not ready.
	ErrUnavailable = errors.New("generation capability unavailable")

	// ErrGenerationFailed indicates the backend was available but the call failed.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrInvalidRequest indicates the caller broke the request contract.
	ErrInvalidRequest = errors.New("invalid request")
)

// Kind classifies why a generation produced no completion.
type Kind int

const (
	// KindUnavailable is capability absence (probe was not Ready).
	KindUnavailable Kind = iota + 1
	// KindBackend is a runtime failure inside the backend.
	KindBackend
	// KindCaller is a caller contract violation.
	KindCaller
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindBackend:
		return "backend"
	case KindCaller:
		return "caller"
	default:
		return "unknown"
	}
}

// Error wraps bridge errors with context.
type Error struct {
	Op    string // Operation that failed ("generate", "probe")
	Kind  Kind   // Failure class
	State State  // Availability observed before the failure
	Err   error  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindUnavailable {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.State)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err means the capability was not usable.
func IsUnavailable(err error) bool {
	var bErr *Error
	if errors.As(err, &bErr) {
		return bErr.Kind == KindUnavailable
	}
	return errors.Is(err, ErrUnavailable)
}

// IsCallerError reports whether err is a caller contract violation.
func IsCallerError(err error) bool {
	var bErr *Error
	if errors.As(err, &bErr) {
		return bErr.Kind == KindCaller
	}
	return errors.Is(err, ErrInvalidRequest)
}
