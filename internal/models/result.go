package models

// SearchResult is a single ranked hit.
type SearchResult struct {
	Entry  *IndexEntry `json:"entry"`
	Score  int         `json:"score"`
	Rank   int         `json:"rank"`
	Anchor string      `json:"anchor,omitempty"`
	// Highlights holds emphasized HTML per display field ("topic", "description").
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SectionGroup is a run of results sharing a section, in first-appearance order.
type SectionGroup struct {
	SectionID string          `json:"section_id"`
	Label     string          `json:"label"`
	Icon      string          `json:"icon,omitempty"`
	Results   []*SearchResult `json:"results"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query     string          `json:"query"`
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	Groups    []*SectionGroup `json:"groups,omitempty"`
	QueryTime int64           `json:"query_time_ms"`
	// Suggestions lists topics close to the query when nothing matched.
	Suggestions []string `json:"suggestions,omitempty"`
	// Cached reports whether the results came from the result cache.
	Cached bool `json:"cached,omitempty"`
}

// CodeLine is one rendered line of a highlighted code block.
type CodeLine struct {
	Number int    `json:"number,omitempty"`
	HTML   string `json:"html"`
}

// HighlightResponse is a rendered code block.
type HighlightResponse struct {
	Filename string     `json:"filename,omitempty"`
	Language string     `json:"language"`
	Lines    []CodeLine `json:"lines"`
	HTML     string     `json:"html"`
}
