package highlight

import "strings"

// HTML renders one segment. Literal text is escaped; styled text is wrapped in a span.
func (s Segment) HTML() string {
	if !s.Styled() {
		return Escape(s.Text)
	}
	return `<span class="` + escapeAttr(s.Class) + `">` + Escape(s.Text) + `</span>`
}

// HTML renders the line's segments.
func (l Line) HTML() string {
	var b strings.Builder
	for _, seg := range l {
		b.WriteString(seg.HTML())
	}
	return b.String()
}

// Text returns the line's source text.
func (l Line) Text() string {
	var b strings.Builder
	for _, seg := range l {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// HTML renders src as escaped text with styled spans.
func (h *Highlighter) HTML(src string) string {
	var b strings.Builder
	for _, seg := range h.Segments(src) {
		b.WriteString(seg.HTML())
	}
	return b.String()
}

// RenderLines renders src one line at a time so callers can number lines.
func (h *Highlighter) RenderLines(src string) []string {
	lines := h.Lines(src)
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.HTML()
	}
	return out
}

// HTML uses the default highlighter.
func HTML(src string) string { return std.HTML(src) }

// RenderLines uses the default highlighter.
func RenderLines(src string) []string { return std.RenderLines(src) }
