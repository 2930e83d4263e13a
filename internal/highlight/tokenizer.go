package highlight

import (
	"sort"
	"strings"
)

// Match is a claimed byte range of the source with its category.
type Match struct {
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Category Category `json:"category"`
	Class    string   `json:"class"`
	Text     string   `json:"text"`
}

func (m Match) overlaps(start, end int) bool {
	return start < m.End && end > m.Start
}

// Segment is a run of source text; Class is empty for literal text.
type Segment struct {
	Text     string   `json:"text"`
	Class    string   `json:"class,omitempty"`
	Category Category `json:"category,omitempty"`
}

// Styled reports whether the segment carries a category.
func (s Segment) Styled() bool {
	return s.Category != ""
}

// Line is the segments of one source line, without the newline.
type Line []Segment

// Highlighter tokenizes source text with a fixed rule set and theme.
// It holds no mutable state and is safe for concurrent use.
type Highlighter struct {
	rules []Rule
	theme Theme
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithTheme sets the category to class mapping.
func WithTheme(t Theme) Option {
	return func(h *Highlighter) { h.theme = t }
}

// WithRules replaces the rule set. Rules are applied in slice order.
func WithRules(rules []Rule) Option {
	return func(h *Highlighter) { h.rules = rules }
}

// NewHighlighter creates a highlighter with the default rules and theme unless overridden.
func NewHighlighter(opts ...Option) *Highlighter {
	h := &Highlighter{
		rules: defaultRules,
		theme: DefaultTheme(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var std = NewHighlighter()

// Tokenize returns the accepted matches in src, sorted by start offset.
// Every rule runs against the original source, so text inside an earlier match is
// never re-scanned. A candidate overlapping an accepted match is dropped.
func (h *Highlighter) Tokenize(src string) []Match {
	if src == "" {
		return nil
	}
	var matches []Match
	for _, rule := range h.rules {
		for _, loc := range rule.Pattern.FindAllStringSubmatchIndex(src, -1) {
			start, end := loc[0], loc[1]
			if rule.Group > 0 && 2*rule.Group+1 < len(loc) {
				start, end = loc[2*rule.Group], loc[2*rule.Group+1]
			}
			if start < 0 || start >= end {
				continue
			}
			if claimed(matches, start, end) {
				continue
			}
			matches = append(matches, Match{
				Start:    start,
				End:      end,
				Category: rule.Category,
				Class:    h.theme.Class(rule.Category),
				Text:     src[start:end],
			})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Start < matches[j].Start })
	return matches
}

func claimed(matches []Match, start, end int) bool {
	for _, m := range matches {
		if m.overlaps(start, end) {
			return true
		}
	}
	return false
}

// Segments partitions src into literal and styled segments covering every byte once.
func (h *Highlighter) Segments(src string) []Segment {
	matches := h.Tokenize(src)
	segments := make([]Segment, 0, 2*len(matches)+1)
	cursor := 0
	for _, m := range matches {
		if cursor < m.Start {
			segments = append(segments, Segment{Text: src[cursor:m.Start]})
		}
		segments = append(segments, Segment{Text: m.Text, Class: m.Class, Category: m.Category})
		cursor = m.End
	}
	if cursor < len(src) {
		segments = append(segments, Segment{Text: src[cursor:]})
	}
	return segments
}

// Lines splits the segments of src on newlines. A styled segment spanning several
// lines is cut into one piece per line with the same class.
// The result always has strings.Count(src, "\n")+1 lines.
func (h *Highlighter) Lines(src string) []Line {
	lines := make([]Line, 1, strings.Count(src, "\n")+1)
	for _, seg := range h.Segments(src) {
		parts := strings.Split(seg.Text, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, Line{})
			}
			if part == "" {
				continue
			}
			piece := seg
			piece.Text = part
			lines[len(lines)-1] = append(lines[len(lines)-1], piece)
		}
	}
	return lines
}

// Tokenize uses the default highlighter.
func Tokenize(src string) []Match { return std.Tokenize(src) }

// Segments uses the default highlighter.
func Segments(src string) []Segment { return std.Segments(src) }

// Lines uses the default highlighter.
func Lines(src string) []Line { return std.Lines(src) }
