package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighlighter_Spans(t *testing.T) {
	hl := NewHighlighter("alpha server")

	spans := hl.Spans("Alpha Server (alpha-2)")
	require.Len(t, spans, 3)

	assert.Equal(t, Span{Start: 0, End: 5, Token: "alpha"}, spans[0])
	assert.Equal(t, Span{Start: 6, End: 12, Token: "server"}, spans[1])
	assert.Equal(t, Span{Start: 14, End: 19, Token: "alpha"}, spans[2])
}

func TestHighlighter_CaseInsensitive(t *testing.T) {
	hl := NewHighlighter("GATEWAY")
	spans := hl.Spans("Foo-Bar gateway")
	require.Len(t, spans, 1)
	assert.Equal(t, "Foo-Bar gateway"[spans[0].Start:spans[0].End], "gateway")
}

func TestHighlighter_NoTokens(t *testing.T) {
	assert.Empty(t, NewHighlighter("").Spans("anything"))
	assert.Empty(t, NewHighlighter("a b").Spans("a b"), "single-rune tokens do not highlight")
}

func TestHighlighter_NoMatch(t *testing.T) {
	hl := NewHighlighter("missing")
	assert.Empty(t, hl.Spans("Alpha Server"))
}
