// Package ranking filters and orders index entries against a free-text query.
package ranking

import "github.com/hyperjump/windguide/internal/models"

// MaxResults caps the number of ranked entries returned for a query.
const MaxResults = 20

// MatchType is how strongly an entry matched; its value is the entry's score.
type MatchType int

const (
	// MatchTypeNone means at least one query term is missing from the haystack.
	MatchTypeNone MatchType = iota
	// MatchTypeHaystack means every term occurs somewhere in the entry's searchable text.
	MatchTypeHaystack
	// MatchTypeTopicContains means the topic contains the whole query.
	MatchTypeTopicContains
	// MatchTypeTopicPrefix means the topic starts with the whole query.
	MatchTypeTopicPrefix
)

// String returns a string representation of the match type.
func (m MatchType) String() string {
	switch m {
	case MatchTypeNone:
		return "none"
	case MatchTypeHaystack:
		return "haystack"
	case MatchTypeTopicContains:
		return "topic_contains"
	case MatchTypeTopicPrefix:
		return "topic_prefix"
	default:
		return "unknown"
	}
}

// ScoredEntry is an entry with its score for one query evaluation.
type ScoredEntry struct {
	Entry *models.IndexEntry
	Score int
}

// MatchType returns the match type corresponding to the score.
func (s ScoredEntry) MatchType() MatchType {
	return MatchType(s.Score)
}
