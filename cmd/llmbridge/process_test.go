package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blacktop/go-llmbridge"
	"github.com/blacktop/go-llmbridge/internal/cstr"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// echoBackend answers with one word per token, up to MaxTokens.
type echoBackend struct {
	state llmbridge.State
	fail  bool
	nul   bool
}

func (e *echoBackend) Availability(context.Context) (llmbridge.State, error) {
	return e.state, nil
}

func (e *echoBackend) Generate(_ context.Context, req llmbridge.Request) (string, error) {
	if e.fail {
		return "", errors.New("model error")
	}
	if e.nul {
		return "bad\x00output", nil
	}
	words := make([]string, 0, req.MaxTokens)
	for i := 0; i < req.MaxTokens && i < 4; i++ {
		words = append(words, fmt.Sprintf("%s%d", req.Prompt, i))
	}
	return strings.Join(words, " "), nil
}

func testProcess(b llmbridge.Backend) *process {
	return newProcess(llmbridge.Static(b), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAvailabilityCodes(t *testing.T) {
	for _, s := range []llmbridge.State{llmbridge.Ready, llmbridge.NotReady, llmbridge.Disabled, llmbridge.Unsupported} {
		p := testProcess(&echoBackend{state: s})
		assert.Equal(t, s.Code(), p.availability())
	}
	assert.Equal(t, int32(3), newProcess(nil, slog.New(slog.NewTextHandler(io.Discard, nil))).availability())
}

func TestGenerateReady(t *testing.T) {
	p := testProcess(&echoBackend{state: llmbridge.Ready})

	ptr := p.generate("Hello", 0.7, 16)
	require.NotNil(t, ptr)
	assert.Equal(t, "Hello0 Hello1 Hello2 Hello3", cstr.GoString(ptr))
	cstr.Free(ptr)
}

func TestGenerateUnsupportedReturnsNil(t *testing.T) {
	for _, s := range []llmbridge.State{llmbridge.NotReady, llmbridge.Disabled, llmbridge.Unsupported} {
		p := testProcess(&echoBackend{state: s})
		assert.Nil(t, p.generate("Hello", 0.7, 256), s.String())
	}
}

func TestGenerateFailuresReturnNil(t *testing.T) {
	assert.Nil(t, testProcess(&echoBackend{state: llmbridge.Ready}).generate("Hello", 0.7, 0), "max_tokens=0 is a caller error")
	assert.Nil(t, testProcess(&echoBackend{state: llmbridge.Ready, fail: true}).generate("Hello", 0.7, 16))
	assert.Nil(t, testProcess(&echoBackend{state: llmbridge.Ready, nul: true}).generate("Hello", 0.7, 16), "never a truncated success")
}

func TestModelInfo(t *testing.T) {
	p := testProcess(&echoBackend{state: llmbridge.Disabled})

	ptr := p.modelInfo()
	require.NotNil(t, ptr)
	defer cstr.Free(ptr)

	var info llmbridge.ModelInfo
	require.NoError(t, json.Unmarshal([]byte(cstr.GoString(ptr)), &info))
	assert.False(t, info.Available)
	assert.Equal(t, llmbridge.Disabled, info.State)
	assert.NotEmpty(t, info.Reason)
}

func TestConcurrentGenerateIndependentBuffers(t *testing.T) {
	p := testProcess(&echoBackend{state: llmbridge.Ready})

	const n = 16
	ptrs := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			prompt := fmt.Sprintf("p%d-", i)
			ptr := p.generate(prompt, 0.7, 2)
			if ptr == nil {
				return
			}
			ptrs[i] = cstr.GoString(ptr)
			cstr.Free(ptr)
		}(i)
	}
	wg.Wait()

	for i, got := range ptrs {
		assert.Equal(t, fmt.Sprintf("p%d-0 p%d-1", i, i), got)
	}
}
