//go:build cgo

package cstr

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocFree(t *testing.T) {
	p, err := Alloc("Hello, world")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "Hello, world", GoString(p))

	Free(p)
}

func TestAllocEmpty(t *testing.T) {
	p, err := Alloc("")
	require.NoError(t, err)
	require.NotNil(t, p, "empty string is still a valid buffer")

	assert.Equal(t, "", GoString(p))
	Free(p)
}

func TestAllocRejectsEmbeddedNUL(t *testing.T) {
	p, err := Alloc("abc\x00def")
	assert.ErrorIs(t, err, ErrEmbeddedNUL)
	assert.Nil(t, p)
}

func TestFreeNil(t *testing.T) {
	assert.NotPanics(t, func() { Free(nil) })
	assert.Equal(t, "", GoString(nil))
}

func TestFreeLeavesOtherBuffersIntact(t *testing.T) {
	a, err := Alloc("first")
	require.NoError(t, err)
	b, err := Alloc("second")
	require.NoError(t, err)

	Free(a)
	assert.Equal(t, "second", GoString(b))
	Free(b)
}

func TestConcurrentAlloc(t *testing.T) {
	const n = 32
	var wg sync.WaitGroup
	errs := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := string(rune('a' + i%26))
			p, err := Alloc(want)
			if err != nil {
				errs <- err.Error()
				return
			}
			if got := GoString(p); got != want {
				errs <- got
			}
			Free(p)
		}(i)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Errorf("unexpected result: %s", e)
	}
}
