package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProcessor() *TextProcessor {
	return NewTextProcessor(zap.NewNop())
}

// TestTruncateText tests size-limited truncation with the marker suffix
func TestTruncateText(t *testing.T) {
	tp := newTestProcessor()

	short := "short text"
	assert.Equal(t, short, tp.TruncateText(short, 100))

	long := strings.Repeat("a", 100)
	truncated := tp.TruncateText(long, 10)
	assert.True(t, strings.HasPrefix(truncated, strings.Repeat("a", 10)))
	assert.Contains(t, truncated, "Content truncated")
}

// TestTruncateText_UTF8Boundary tests that truncation never splits a rune
func TestTruncateText_UTF8Boundary(t *testing.T) {
	tp := newTestProcessor()

	// "é" is two bytes; cutting at 3 would land mid-rune
	text := "aaéaa"
	truncated := tp.TruncateText(text, 3)
	assert.True(t, utf8.ValidString(truncated))
}

// TestTruncateText_NoLimit tests that a non-positive limit disables truncation
func TestTruncateText_NoLimit(t *testing.T) {
	tp := newTestProcessor()

	long := strings.Repeat("a", 100)
	assert.Equal(t, long, tp.TruncateText(long, 0))
	assert.Equal(t, long, tp.TruncateText(long, -1))
}

// TestSanitizeUTF8 tests invalid byte removal
func TestSanitizeUTF8(t *testing.T) {
	tp := newTestProcessor()

	assert.Equal(t, "clean text", tp.SanitizeUTF8("clean text"))
	assert.Equal(t, "ab", tp.SanitizeUTF8("a\xffb"))
}

// TestExtractJSON tests pulling a JSON object out of wrapped model output
func TestExtractJSON(t *testing.T) {
	jsonStr, err := ExtractJSON(`{"category": "invoice"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"category": "invoice"}`, jsonStr)

	jsonStr, err = ExtractJSON("```json\n{\"category\": \"invoice\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"category": "invoice"}`, jsonStr)

	jsonStr, err = ExtractJSON(`Here is the result: {"a": {"b": 1}} as requested.`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, jsonStr)

	_, err = ExtractJSON("no json here")
	assert.Error(t, err)
}
