package llmbridge

import "fmt"

// State is the availability of the generation capability at probe time.
//
// The numeric values are the wire codes returned by llm_check_availability
// and must never be renumbered.
type State int32

const (
	// Ready means the capability can be used now.
	Ready State = iota
	// NotReady means the capability exists but needs setup (e.g. a model download).
	NotReady
	// Disabled means the capability exists but is turned off by policy or the user.
	Disabled
	// Unsupported means there is no capability on this hardware/software combination.
	Unsupported
)

// StateFromCode converts a wire code into a State. Anything outside the
// closed set is Unsupported.
func StateFromCode(code int32) State {
	s := State(code)
	if !s.Valid() {
		return Unsupported
	}
	return s
}

// Valid reports whether s is one of the four defined states.
func (s State) Valid() bool {
	return s >= Ready && s <= Unsupported
}

// Code returns the frozen wire code for s.
func (s State) Code() int32 {
	return int32(s)
}

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case NotReady:
		return "not-ready"
	case Disabled:
		return "disabled"
	case Unsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Reason returns a generic human readable explanation for a non-ready state.
func (s State) Reason() string {
	switch s {
	case Ready:
		return ""
	case NotReady:
		return "Model not ready (downloading or initializing)"
	case Disabled:
		return "Model disabled by system policy or user settings"
	default:
		return "On-device generation is not supported on this device"
	}
}
