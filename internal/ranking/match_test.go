package ranking

import (
	"testing"
)

func TestHighlightMatch(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  Highlighted
	}{
		{"first occurrence", "Grid and grid", "GRID", Highlighted{Before: "", Match: "Grid", After: " and grid"}},
		{"middle", "CSS Grid Basics", "grid", Highlighted{Before: "CSS ", Match: "Grid", After: " Basics"}},
		{"trimmed query", "Dark Mode", "  mode ", Highlighted{Before: "Dark ", Match: "Mode"}},
		{"whole query not contiguous", "Mode of Dark", "dark mode", Highlighted{Before: "Mode of Dark"}},
		{"blank query", "Flexbox", " ", Highlighted{Before: "Flexbox"}},
		{"non-ascii text", "Übersicht Grid", "grid", Highlighted{Before: "Übersicht ", Match: "Grid"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HighlightMatch(tt.text, tt.query); got != tt.want {
				t.Errorf("HighlightMatch(%q, %q) = %+v, want %+v", tt.text, tt.query, got, tt.want)
			}
		})
	}
}

func TestHighlighted_HTML(t *testing.T) {
	got := HighlightMatch("<div> grid", "grid").HTML()
	want := "&lt;div&gt; <mark>grid</mark>"
	if got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if HighlightMatch("a & b", "zzz").HTML() != "a &amp; b" {
		t.Error("unmatched text should be escaped without a mark")
	}
}

func TestIndexFold_LengthChangingCase(t *testing.T) {
	// "İ" lower-cases to a longer byte sequence.
	start, end := indexFold("İx Grid", "grid")
	if start < 0 {
		t.Fatal("expected a match")
	}
	if got := "İx Grid"[start:end]; got != "Grid" {
		t.Errorf("matched %q, want Grid", got)
	}
}
