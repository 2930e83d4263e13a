package keyword

import (
	"context"
	"sort"
	"strings"

	"github.com/hyperjump/windguide/internal/models"
)

// Suggester proposes alternative queries for searches that found nothing.
type Suggester struct {
	index          *Index
	topics         map[string]string // entry id -> topic
	maxDistance    int
	maxSuggestions int
}

// SuggesterOption configures a Suggester.
type SuggesterOption func(*Suggester)

// WithMaxDistance sets the largest edit distance a correction may have (1 or 2).
func WithMaxDistance(d int) SuggesterOption {
	return func(s *Suggester) {
		if d > 0 && d <= 2 {
			s.maxDistance = d
		}
	}
}

// WithMaxSuggestions caps how many suggestions are returned.
func WithMaxSuggestions(n int) SuggesterOption {
	return func(s *Suggester) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSuggester indexes entries and returns a suggester over them.
func NewSuggester(entries []*models.IndexEntry, opts ...SuggesterOption) (*Suggester, error) {
	idx, err := NewIndex(entries)
	if err != nil {
		return nil, err
	}
	s := &Suggester{
		index:          idx,
		topics:         make(map[string]string, len(entries)),
		maxDistance:    2,
		maxSuggestions: 3,
	}
	for _, e := range entries {
		s.topics[e.ID] = e.Topic
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Correct replaces each unknown query term with its closest dictionary term.
// Terms that are a substring of some dictionary term are left alone since the
// ranker already matches substrings. ok reports whether anything changed.
func (s *Suggester) Correct(query string) (corrected string, ok bool) {
	terms := tokenizeQuery(query)
	if len(terms) == 0 {
		return "", false
	}
	out := make([]string, len(terms))
	for i, term := range terms {
		out[i] = term
		if s.known(term) {
			continue
		}
		if best, found := s.closest(term); found {
			out[i] = best
			ok = true
		}
	}
	return strings.Join(out, " "), ok
}

func (s *Suggester) known(term string) bool {
	if _, ok := s.index.terms[term]; ok {
		return true
	}
	for t := range s.index.terms {
		if strings.Contains(t, term) {
			return true
		}
	}
	return false
}

// closest picks the dictionary term with the smallest distance, then the highest
// document frequency, then the lexically smallest. Short terms allow one edit.
func (s *Suggester) closest(term string) (string, bool) {
	limit := s.maxDistance
	if len([]rune(term)) <= 4 {
		limit = 1
	}
	best, bestDist, bestFreq := "", limit+1, 0
	for t, freq := range s.index.terms {
		diff := len(t) - len(term)
		if diff < 0 {
			diff = -diff
		}
		if diff > limit {
			continue
		}
		d := Distance(term, t)
		if d > limit {
			continue
		}
		if d < bestDist || (d == bestDist && (freq > bestFreq || (freq == bestFreq && t < best))) {
			best, bestDist, bestFreq = t, d, freq
		}
	}
	return best, best != ""
}

// Suggest returns up to the configured number of alternatives for query: the
// spelling-corrected query first, then topics of fuzzily matched entries.
func (s *Suggester) Suggest(ctx context.Context, query string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(q string) {
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup || len(out) >= s.maxSuggestions {
			return
		}
		seen[key] = struct{}{}
		out = append(out, q)
	}
	seen[strings.ToLower(strings.TrimSpace(query))] = struct{}{}

	if corrected, ok := s.Correct(query); ok {
		add(corrected)
	}
	hits, err := s.index.Fuzzy(ctx, query, s.maxDistance, s.maxSuggestions*2)
	if err != nil {
		return out, err
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	for _, h := range hits {
		if topic, ok := s.topics[h.ID]; ok {
			add(topic)
		}
	}
	return out, nil
}

// Close releases the underlying index.
func (s *Suggester) Close() error {
	return s.index.Close()
}
