package ranking

import (
	"sort"
	"strings"

	"github.com/hyperjump/windguide/internal/models"
)

// Haystack returns the lower-cased searchable text of an entry: topic, section
// label, description and keywords joined by spaces.
func Haystack(e *models.IndexEntry) string {
	parts := make([]string, 0, 3+len(e.Keywords))
	parts = append(parts, e.Topic, e.SectionLabel, e.Description)
	parts = append(parts, e.Keywords...)
	return strings.ToLower(strings.Join(parts, " "))
}

// Terms splits the trimmed query into lower-cased whitespace-delimited terms.
func Terms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Score rates an entry against query. Every term must be a substring of the
// haystack or the score is 0. Matching entries score 3 when the topic starts with
// the whole query, 2 when the topic contains it, and 1 otherwise.
func Score(e *models.IndexEntry, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	terms := Terms(q)
	if len(terms) == 0 {
		return int(MatchTypeNone)
	}
	return int(score(e, q, terms))
}

func score(e *models.IndexEntry, q string, terms []string) MatchType {
	haystack := Haystack(e)
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return MatchTypeNone
		}
	}
	topic := strings.ToLower(e.Topic)
	switch {
	case strings.HasPrefix(topic, q):
		return MatchTypeTopicPrefix
	case strings.Contains(topic, q):
		return MatchTypeTopicContains
	default:
		return MatchTypeHaystack
	}
}

// Rank returns up to MaxResults entries with a positive score, best first.
// Equal scores keep collection order. A blank query yields no results.
func Rank(entries []*models.IndexEntry, query string) []ScoredEntry {
	return RankN(entries, query, MaxResults)
}

// RankN is Rank with an explicit cap; limit <= 0 means MaxResults.
func RankN(entries []*models.IndexEntry, query string, limit int) []ScoredEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	terms := Terms(q)
	if len(terms) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = MaxResults
	}

	results := make([]ScoredEntry, 0, len(entries))
	for _, e := range entries {
		if m := score(e, q, terms); m > MatchTypeNone {
			results = append(results, ScoredEntry{Entry: e, Score: int(m)})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return TopN(results, limit)
}

// TopN returns the first n results.
func TopN(results []ScoredEntry, n int) []ScoredEntry {
	if n >= len(results) {
		return results
	}
	return results[:n]
}
