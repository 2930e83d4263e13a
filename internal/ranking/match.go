package ranking

import (
	"strings"

	"github.com/hyperjump/windguide/internal/highlight"
)

// Highlighted splits a display field around the first occurrence of the query.
type Highlighted struct {
	Before string `json:"before"`
	Match  string `json:"match,omitempty"`
	After  string `json:"after,omitempty"`
}

// HighlightMatch emphasizes the first case-insensitive occurrence of the whole
// trimmed query in text. When the query does not occur, the whole text is Before.
func HighlightMatch(text, query string) Highlighted {
	q := strings.TrimSpace(query)
	if q == "" {
		return Highlighted{Before: text}
	}
	start, end := indexFold(text, q)
	if start < 0 {
		return Highlighted{Before: text}
	}
	return Highlighted{
		Before: text[:start],
		Match:  text[start:end],
		After:  text[end:],
	}
}

// indexFold finds q in text ignoring case and returns byte offsets into text.
func indexFold(text, q string) (int, int) {
	lower := strings.ToLower(text)
	lq := strings.ToLower(q)
	if len(lower) == len(text) {
		i := strings.Index(lower, lq)
		if i < 0 {
			return -1, -1
		}
		return i, i + len(lq)
	}
	// Lower-casing changed byte lengths; fall back to a rune-aligned scan.
	for i := range text {
		for j := i; j <= len(text); j++ {
			if j < len(text) && !isRuneStart(text[j]) {
				continue
			}
			sub := strings.ToLower(text[i:j])
			if sub == lq {
				return i, j
			}
			if len(sub) > len(lq) {
				break
			}
		}
	}
	return -1, -1
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// Matched reports whether the field contained the query.
func (h Highlighted) Matched() bool {
	return h.Match != ""
}

// HTML renders the field escaped, with the match wrapped in <mark>.
func (h Highlighted) HTML() string {
	if !h.Matched() {
		return highlight.Escape(h.Before)
	}
	return highlight.Escape(h.Before) + "<mark>" + highlight.Escape(h.Match) + "</mark>" + highlight.Escape(h.After)
}
