package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"short"}, wrap("short", 10))
	assert.Equal(t, []string{""}, wrap("", 10))

	lines := wrap("the quick brown fox jumps over the lazy dog", 10)
	assert.Equal(t, []string{"the quick", "brown fox", "jumps over", "the lazy", "dog"}, lines)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), 10)
	}
}

func TestWrapKeepsParagraphs(t *testing.T) {
	assert.Equal(t, []string{"one", "", "two three"}, wrap("one\n\ntwo three", 10))
}

func TestWrapSplitsLongWords(t *testing.T) {
	long := strings.Repeat("x", 12)
	assert.Equal(t, []string{"a", strings.Repeat("x", 10), "xx"}, wrap("a "+long, 10))

	// widths count runes, not bytes
	assert.Equal(t, []string{"ééé", "éé"}, wrap("ééééé", 3))
}

func TestModelDetails(t *testing.T) {
	assert.Equal(t, "", modelDetails(nil))
	assert.Equal(t, "llama · 3.2B · Q4_K_M · 2.0 GB", modelDetails(map[string]any{
		"family":             "llama",
		"parameter_size":     "3.2B",
		"quantization_level": "Q4_K_M",
		"size_bytes":         int64(2019393189),
	}))
	assert.Equal(t, "qwen2", modelDetails(map[string]any{"family": "qwen2", "parameter_size": "", "size_bytes": int64(0)}))
}
