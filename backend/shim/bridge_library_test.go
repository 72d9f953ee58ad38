//go:build darwin || linux || freebsd

package shim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ebitengine/purego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blacktop/go-llmbridge"
)

// bridgeLibraryEnv names the built library when the test runs as its own
// child process. The library reads its configuration from the environment
// on first use, so it is loaded in a process started with that environment.
const bridgeLibraryEnv = "LLMBRIDGE_TEST_LIBRARY"

func TestBridgeLibrary(t *testing.T) {
	if path := os.Getenv(bridgeLibraryEnv); path != "" {
		checkBridgeLibrary(t, path)
		return
	}
	if testing.Short() {
		t.Skip("builds cmd/llmbridge as a c-shared library")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skipf("go toolchain not found: %v", err)
	}
	if out, err := exec.Command(goBin, "env", "CGO_ENABLED").Output(); err != nil || strings.TrimSpace(string(out)) != "1" {
		t.Skip("cgo is disabled")
	}

	lib := filepath.Join(t.TempDir(), Bridge.Library)
	build := exec.Command(goBin, "build", "-buildmode=c-shared", "-o", lib, "github.com/blacktop/go-llmbridge/cmd/llmbridge")
	if out, err := build.CombinedOutput(); err != nil {
		t.Skipf("failed to build c-shared library: %v\n%s", err, out)
	}

	var generated atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"llama3.2:latest"}]}`))
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		generated.Add(1)
		var req struct {
			Options struct {
				NumPredict int `json:"num_predict"`
			} `json:"options"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		words := strings.TrimSpace(strings.Repeat("w ", req.Options.NumPredict))
		json.NewEncoder(w).Encode(map[string]any{"response": words, "done": true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	child := exec.Command(os.Args[0], "-test.run=^TestBridgeLibrary$", "-test.v")
	child.Env = append(os.Environ(),
		bridgeLibraryEnv+"="+lib,
		"LLMBRIDGE_CONFIG="+filepath.Join(t.TempDir(), "missing.toml"),
		"LLMBRIDGE_BACKEND=ollama",
		"LLMBRIDGE_OLLAMA_URL="+srv.URL,
		"LLMBRIDGE_OLLAMA_MODEL=llama3.2",
	)
	out, err := child.CombinedOutput()
	require.NoError(t, err, "%s", out)
	assert.Contains(t, string(out), "--- PASS: TestBridgeLibrary")
	assert.Positive(t, generated.Load(), "completions came from the configured server")
}

func checkBridgeLibrary(t *testing.T, path string) {
	ctx := context.Background()

	// never closed: a Go runtime cannot be unloaded
	lib, err := Open(path, Bridge)
	require.NoError(t, err)

	assert.Equal(t, int32(0), lib.Code())
	s, err := lib.Availability(ctx)
	require.NoError(t, err)
	assert.Equal(t, llmbridge.Ready, s)

	text, err := lib.Generate(ctx, llmbridge.Request{Prompt: "Hello", Temperature: 0.7, MaxTokens: 4})
	require.NoError(t, err)
	assert.Equal(t, "w w w w", text)

	_, err = lib.Generate(ctx, llmbridge.Request{Prompt: "Hello", Temperature: 0.7, MaxTokens: 0})
	assert.ErrorIs(t, err, ErrNoCompletion, "max_tokens=0 is NULL at the boundary")

	var rawGenerate func(prompt uintptr, temperature float32, maxTokens int32) uintptr
	sym, err := dlsym(lib.handle, "llm_generate")
	require.NoError(t, err)
	purego.RegisterFunc(&rawGenerate, sym)
	assert.Zero(t, rawGenerate(0, 0.7, 16), "NULL prompt gives NULL")

	assert.NotPanics(t, func() { lib.freeString(0) }, "free_string(NULL) is a no-op")

	raw, ok := lib.ModelInfoJSON()
	require.True(t, ok)
	var info llmbridge.ModelInfo
	require.NoError(t, json.Unmarshal([]byte(raw), &info))
	assert.Equal(t, "ollama:llama3.2", info.ID)
	assert.True(t, info.Available)
	assert.Equal(t, "ollama:llama3.2", lib.Info().ID)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				got, err := lib.Generate(ctx, llmbridge.Request{Prompt: fmt.Sprint(i), MaxTokens: 2})
				if err == nil && got != "w w" {
					err = fmt.Errorf("unexpected completion %q", got)
				}
				if err != nil {
					errs[i] = err
					return
				}
			}
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}
