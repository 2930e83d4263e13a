package keyword

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/windguide/internal/models"
)

func testEntries() []*models.IndexEntry {
	return []*models.IndexEntry{
		{ID: "flex", Topic: "Flex container", SectionID: "flexbox", SectionLabel: "Flexbox", Description: "Lay out children in a row", Keywords: []string{"flex", "inline-flex"}},
		{ID: "grid", Topic: "Grid template columns", SectionID: "grid", SectionLabel: "CSS Grid", Description: "Define column tracks", Keywords: []string{"grid-cols-3"}},
		{ID: "dark", Topic: "Dark mode variant", SectionID: "dark-mode", SectionLabel: "Dark Mode", Description: "Style the dark theme", Keywords: []string{"dark:", "theme"}},
	}
}

func newTestSuggester(t *testing.T, opts ...SuggesterOption) *Suggester {
	t.Helper()
	s, err := NewSuggester(testEntries(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestIndex_TermsAndCount(t *testing.T) {
	s := newTestSuggester(t)
	n, err := s.index.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	terms := s.index.Terms()
	assert.Contains(t, terms, "flex")
	assert.Contains(t, terms, "grid")
	assert.Contains(t, terms, "theme")
	assert.IsNonDecreasing(t, terms)
}

func TestIndex_Fuzzy(t *testing.T) {
	s := newTestSuggester(t)
	hits, err := s.index.Fuzzy(context.Background(), "gird", 2, 5)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "grid", hits[0].ID)

	hits, err = s.index.Fuzzy(context.Background(), "   ", 1, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSuggester_Correct(t *testing.T) {
	s := newTestSuggester(t)

	got, ok := s.Correct("flxe")
	assert.True(t, ok)
	assert.Equal(t, "flex", got)

	got, ok = s.Correct("Gird columns")
	assert.True(t, ok)
	assert.Equal(t, "grid columns", got)

	// Substrings of dictionary terms are what the ranker already matches.
	_, ok = s.Correct("colu")
	assert.False(t, ok)

	_, ok = s.Correct("qqqqqqqq")
	assert.False(t, ok)

	_, ok = s.Correct("")
	assert.False(t, ok)
}

func TestSuggester_ShortTermsAllowOneEdit(t *testing.T) {
	s := newTestSuggester(t)
	// "fxl" is two edits from "flex" and too short for a second edit.
	_, ok := s.Correct("fxl")
	assert.False(t, ok)
}

func TestSuggester_Suggest(t *testing.T) {
	s := newTestSuggester(t, WithMaxSuggestions(2))
	got, err := s.Suggest(context.Background(), "gird")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "grid", got[0])
	assert.LessOrEqual(t, len(got), 2)
	assert.Contains(t, got, "Grid template columns")
}

func TestSuggester_SuggestNothingForNoise(t *testing.T) {
	s := newTestSuggester(t)
	got, err := s.Suggest(context.Background(), "zzzzzzzzzz")
	require.NoError(t, err)
	assert.Empty(t, got)
}
