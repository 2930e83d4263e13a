package highlight

import (
	"strings"

	"github.com/hyperjump/windguide/internal/models"
)

// DefaultLanguage is the label used when a code block names none.
const DefaultLanguage = "jsx"

// blankLine keeps an empty numbered line from collapsing.
const blankLine = "\u00a0"

// Block renders a trimmed code sample as numbered lines, the way the tutorial's code
// boxes show it. Empty lines become a non-breaking space when numbering is on.
func (h *Highlighter) Block(req *models.HighlightRequest) *models.HighlightResponse {
	lang := req.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	numbered := req.LineNumbersOrDefault()
	rendered := h.RenderLines(strings.TrimSpace(req.Code))

	resp := &models.HighlightResponse{
		Filename: req.Filename,
		Language: lang,
		Lines:    make([]models.CodeLine, len(rendered)),
	}
	for i, html := range rendered {
		line := models.CodeLine{HTML: html}
		if numbered {
			line.Number = i + 1
			if html == "" {
				line.HTML = blankLine
			}
		}
		resp.Lines[i] = line
	}
	resp.HTML = strings.Join(rendered, "\n")
	return resp
}

// Block uses the default highlighter.
func Block(req *models.HighlightRequest) *models.HighlightResponse { return std.Block(req) }
