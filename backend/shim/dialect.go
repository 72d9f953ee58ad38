package shim

import (
	"fmt"
	"runtime"

	"github.com/blacktop/go-llmbridge"
)

// Dialect describes how a particular native shim spells the three-function
// contract: symbol prefix, temperature width and availability code table.
type Dialect struct {
	Name   string
	Prefix string

	// Double is set when the shim takes temperature as a C double.
	Double bool

	// Codes maps the shim's availability codes to bridge states.
	// Codes missing from the table are Unsupported. A nil table means the
	// bridge codes are used as is.
	Codes map[int32]llmbridge.State

	// Reasons holds the shim specific wording for non-ready states.
	Reasons map[llmbridge.State]string

	// Library is the file name searched for when no path is configured.
	Library string

	// Concurrent is set when the shim tolerates overlapping calls.
	Concurrent bool

	Model llmbridge.ModelInfo
}

// Apple is the Swift FoundationModels shim (apple_llm_*).
var Apple = Dialect{
	Name:   "apple",
	Prefix: "apple_llm_",
	Double: true,
	Codes: map[int32]llmbridge.State{
		0: llmbridge.Ready,
		1: llmbridge.Unsupported, // device not eligible
		2: llmbridge.Disabled,    // Apple Intelligence not enabled
		3: llmbridge.NotReady,    // model downloading
	},
	Reasons: map[llmbridge.State]string{
		llmbridge.Unsupported: "Device not eligible (requires Apple Silicon)",
		llmbridge.Disabled:    "Apple Intelligence not enabled in System Settings",
		llmbridge.NotReady:    "Model not ready (downloading or initializing)",
	},
	Library: "libAppleLLMShim.dylib",
	Model: llmbridge.ModelInfo{
		ID:       "apple-foundation-model",
		Name:     "Apple Foundation Model",
		Provider: "apple",
	},
}

// Windows is the C++/WinRT Phi Silica bridge (windows_llm_*).
var Windows = Dialect{
	Name:   "windows",
	Prefix: "windows_llm_",
	Codes: map[int32]llmbridge.State{
		0: llmbridge.Ready,
		1: llmbridge.NotReady, // ensuring ready
		2: llmbridge.NotReady,
		3: llmbridge.Unsupported,
	},
	Reasons: map[llmbridge.State]string{
		llmbridge.NotReady:    "Phi Silica not ready",
		llmbridge.Unsupported: "Copilot+ PC with NPU required",
	},
	Library: "windows_llm_bridge.dll",
	Model: llmbridge.ModelInfo{
		ID:       "phi-silica",
		Name:     "Phi Silica",
		Provider: "windows",
	},
}

// Bridge is this module's own shared library (llm_*). Its codes are the
// bridge states verbatim.
var Bridge = Dialect{
	Name:       "bridge",
	Prefix:     "llm_",
	Library:    bridgeLibrary(),
	Concurrent: true,
	Model: llmbridge.ModelInfo{
		ID:       "llmbridge",
		Name:     "llmbridge",
		Provider: "llmbridge",
	},
}

// DialectByName returns the named dialect. An empty name picks the dialect
// native to the running OS.
func DialectByName(name string) (Dialect, error) {
	switch name {
	case "":
		return DefaultDialect()
	case Apple.Name:
		return Apple, nil
	case Windows.Name:
		return Windows, nil
	case Bridge.Name:
		return Bridge, nil
	default:
		return Dialect{}, fmt.Errorf("unknown shim dialect %q", name)
	}
}

// DefaultDialect returns the platform shim for runtime.GOOS.
func DefaultDialect() (Dialect, error) {
	switch runtime.GOOS {
	case "darwin":
		return Apple, nil
	case "windows":
		return Windows, nil
	default:
		return Dialect{}, fmt.Errorf("no native on-device model shim for %s", runtime.GOOS)
	}
}

// State maps a raw shim code to a bridge state. A dialect without a code
// table speaks the bridge's own codes.
func (d Dialect) State(code int32) llmbridge.State {
	if d.Codes == nil {
		return llmbridge.StateFromCode(code)
	}
	if s, ok := d.Codes[code]; ok {
		return s
	}
	return llmbridge.Unsupported
}

// Reason returns the dialect's wording for s, or the generic one.
func (d Dialect) Reason(s llmbridge.State) string {
	if r, ok := d.Reasons[s]; ok {
		return r
	}
	return s.Reason()
}

func (d Dialect) symbol(name string) string {
	return d.Prefix + name
}

func bridgeLibrary() string {
	switch runtime.GOOS {
	case "darwin":
		return "libllmbridge.dylib"
	case "windows":
		return "llmbridge.dll"
	default:
		return "libllmbridge.so"
	}
}
