package search

import (
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Span is a byte range inside display text where a query token matched,
// handed to the UI for result decoration.
type Span struct {
	Start int    `json:"from"`
	End   int    `json:"to"`
	Token string `json:"token"`
}

// Highlighter finds query-token occurrences inside result text. One automaton
// serves all results of a query, so construction cost is paid once per
// keystroke burst rather than once per result row.
type Highlighter struct {
	ac     ahocorasick.AhoCorasick
	tokens []string
}

// NewHighlighter compiles an automaton from the query's tokens. A query that
// tokenizes to nothing yields a highlighter that reports no spans.
func NewHighlighter(query string) *Highlighter {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return &Highlighter{}
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	return &Highlighter{
		ac:     builder.Build(tokens),
		tokens: tokens,
	}
}

// Spans returns the matched ranges in text, left to right, non-overlapping.
func (h *Highlighter) Spans(text string) []Span {
	if len(h.tokens) == 0 {
		return nil
	}

	matches := h.ac.FindAll(strings.ToLower(text))
	spans := make([]Span, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, Span{
			Start: m.Start(),
			End:   m.End(),
			Token: h.tokens[m.Pattern()],
		})
	}
	return spans
}
