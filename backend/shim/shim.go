// Package shim loads a native on-device model shim at run time using purego
// and adapts it to llmbridge.Backend.
//
// A shim is any dynamic library exporting the three-function contract
//
//	int   <prefix>check_availability(void);
//	char* <prefix>generate(const char* prompt, <float|double> temperature, int max_tokens);
//	void  <prefix>free_string(char* ptr);
//
// such as the Swift FoundationModels shim on macOS, the C++/WinRT Phi Silica
// bridge on Windows, or a build of cmd/llmbridge itself. Results are copied
// into Go memory and then handed back to the shim's own free_string, never to
// the host's libc.
package shim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/blacktop/go-llmbridge"
)

var (
	// ErrNoCompletion is returned when the shim's generate returns NULL.
	ErrNoCompletion = errors.New("shim returned no completion")

	// ErrNotFound is returned when no shim library exists in the search paths.
	ErrNotFound = errors.New("shim library not found")

	errPromptNUL = errors.New("prompt contains NUL byte")
)

// Library is a loaded shim.
type Library struct {
	path    string
	dialect Dialect
	handle  uintptr

	checkAvailability func() int32
	generate32        func(prompt string, temperature float32, maxTokens int32) uintptr
	generate64        func(prompt string, temperature float64, maxTokens int32) uintptr
	freeString        func(ptr uintptr)
	modelInfo         func() uintptr // optional
}

// Open loads the shim at path and resolves the dialect's symbols.
func Open(path string, d Dialect) (*Library, error) {
	handle, err := dlopen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	lib := &Library{path: path, dialect: d, handle: handle}
	if err := lib.resolve(); err != nil {
		dlclose(handle)
		return nil, err
	}
	return lib, nil
}

func (l *Library) resolve() error {
	if err := l.register(&l.checkAvailability, "check_availability"); err != nil {
		return err
	}
	generate := any(&l.generate32)
	if l.dialect.Double {
		generate = &l.generate64
	}
	if err := l.register(generate, "generate"); err != nil {
		return err
	}
	if err := l.register(&l.freeString, "free_string"); err != nil {
		return err
	}
	// model_info is only exported by llmbridge builds
	_ = l.register(&l.modelInfo, "model_info")
	return nil
}

func (l *Library) register(fptr any, name string) error {
	sym, err := dlsym(l.handle, l.dialect.symbol(name))
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", l.dialect.symbol(name), err)
	}
	purego.RegisterFunc(fptr, sym)
	return nil
}

// Path returns the file the shim was loaded from.
func (l *Library) Path() string { return l.path }

// Dialect returns the shim's dialect.
func (l *Library) Dialect() Dialect { return l.dialect }

// Code returns the raw availability code reported by the shim.
func (l *Library) Code() int32 {
	return l.checkAvailability()
}

// Availability implements llmbridge.Backend.
func (l *Library) Availability(context.Context) (llmbridge.State, error) {
	return l.dialect.State(l.Code()), nil
}

// Generate implements llmbridge.Backend. The context is not forwarded: the
// native call cannot be revoked once started.
func (l *Library) Generate(_ context.Context, req llmbridge.Request) (string, error) {
	if strings.IndexByte(req.Prompt, 0) >= 0 {
		return "", errPromptNUL
	}
	maxTokens := int32(math.MaxInt32)
	if req.MaxTokens < math.MaxInt32 {
		maxTokens = int32(req.MaxTokens)
	}

	var ptr uintptr
	if l.dialect.Double {
		ptr = l.generate64(req.Prompt, req.Temperature, maxTokens)
	} else {
		ptr = l.generate32(req.Prompt, float32(req.Temperature), maxTokens)
	}
	if ptr == 0 {
		return "", ErrNoCompletion
	}
	return l.take(ptr), nil
}

// ModelInfoJSON returns the shim's own model description, if it exports one.
func (l *Library) ModelInfoJSON() (string, bool) {
	if l.modelInfo == nil {
		return "", false
	}
	ptr := l.modelInfo()
	if ptr == 0 {
		return "", false
	}
	return l.take(ptr), true
}

// take copies a shim-owned C string and releases it through the shim.
func (l *Library) take(ptr uintptr) string {
	s := goString(ptr)
	l.freeString(ptr)
	return s
}

// Info implements llmbridge.Describer. Shims exporting model_info describe
// themselves; the rest get the dialect's model.
func (l *Library) Info() llmbridge.ModelInfo {
	raw, ok := l.ModelInfoJSON()
	if !ok {
		return l.dialect.Model
	}
	var info llmbridge.ModelInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil || info.ID == "" {
		return l.dialect.Model
	}
	return info
}

// Reason implements llmbridge.Reasoner.
func (l *Library) Reason(s llmbridge.State) string {
	return l.dialect.Reason(s)
}

// ConcurrentSafe implements llmbridge.ConcurrentSafe.
func (l *Library) ConcurrentSafe() bool {
	return l.dialect.Concurrent
}

// Close unloads the shim. The bridge itself never calls it; it exists for
// short-lived hosts such as the CLI.
func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := dlclose(l.handle)
	l.handle = 0
	return err
}

// Find returns the first existing shim library for d, checking extra paths
// first, then the working directory, ./lib, ./build, and the directory of
// the running executable.
func Find(d Dialect, extra ...string) (string, error) {
	searchPaths := append([]string{}, extra...)
	searchPaths = append(searchPaths,
		d.Library,
		filepath.Join("lib", d.Library),
		filepath.Join("build", d.Library),
	)
	if exe, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(filepath.Dir(exe), d.Library))
	}

	for _, path := range searchPaths {
		if path == "" {
			continue
		}
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, d.Library)
}

// goString converts a C string to a Go string
func goString(cstr uintptr) string {
	if cstr == 0 {
		return ""
	}
	p := unsafe.Pointer(cstr)
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}
