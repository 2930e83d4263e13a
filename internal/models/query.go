package models

import "strings"

const (
	// DefaultSearchLimit is the number of results returned when no limit is given.
	DefaultSearchLimit = 20
	// MaxSearchLimit caps any requested limit.
	MaxSearchLimit = 20
)

// SearchQuery represents a search request against the topic index.
type SearchQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
	// GroupBySection additionally returns results grouped by their owning section.
	GroupBySection bool `json:"group_by_section,omitempty"`
	// Suggest asks for "did you mean" topics when nothing matches.
	Suggest bool `json:"suggest,omitempty"`
}

// Normalize trims the query and clamps the limit. A blank query is valid and
// simply yields no results.
func (q *SearchQuery) Normalize() {
	q.Query = strings.TrimSpace(q.Query)
	if q.Limit <= 0 {
		q.Limit = DefaultSearchLimit
	}
	if q.Limit > MaxSearchLimit {
		q.Limit = MaxSearchLimit
	}
}

// IsBlank reports whether the query has no searchable content.
func (q *SearchQuery) IsBlank() bool {
	return strings.TrimSpace(q.Query) == ""
}

// HighlightRequest asks for a code sample to be tokenized and rendered.
type HighlightRequest struct {
	Code        string `json:"code"`
	Filename    string `json:"filename,omitempty"`
	Language    string `json:"language,omitempty"`
	LineNumbers *bool  `json:"line_numbers,omitempty"`
}

// LineNumbersOrDefault returns whether to number lines; defaults to true when unset.
func (r *HighlightRequest) LineNumbersOrDefault() bool {
	if r.LineNumbers != nil {
		return *r.LineNumbers
	}
	return true
}
