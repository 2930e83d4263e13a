package ranking

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/hyperjump/windguide/internal/models"
)

func topics(results []ScoredEntry) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Entry.Topic
	}
	return out
}

func TestRank_BlankQuery(t *testing.T) {
	entries := []*models.IndexEntry{{ID: "1", Topic: "Grid"}}
	for _, q := range []string{"", " ", "\t\n  "} {
		if got := Rank(entries, q); len(got) != 0 {
			t.Errorf("Rank(%q) = %v, want empty", q, got)
		}
	}
	if got := Rank(nil, "grid"); len(got) != 0 {
		t.Errorf("Rank on empty collection = %v", got)
	}
}

func TestRank_AllTermsMustMatch(t *testing.T) {
	entries := []*models.IndexEntry{
		{ID: "flex", Topic: "Flexbox", Description: "layout utilities"},
	}
	if got := Rank(entries, "flexbox missing"); len(got) != 0 {
		t.Errorf("expected no results when a term is absent, got %v", topics(got))
	}
	got := Rank(entries, "flex layout")
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got := Rank(entries, "layout flex"); len(got) != 1 {
		t.Error("term order should not matter")
	}
}

func TestRank_Ordering(t *testing.T) {
	entries := []*models.IndexEntry{
		{ID: "helper", Topic: "Layout Helper", Keywords: []string{"grid"}},
		{ID: "basics", Topic: "CSS Grid Basics"},
		{ID: "grid", Topic: "Grid"},
		{ID: "none", Topic: "Typography"},
	}
	got := Rank(entries, "grid")
	want := []string{"Grid", "CSS Grid Basics", "Layout Helper"}
	if !reflect.DeepEqual(topics(got), want) {
		t.Errorf("order = %v, want %v", topics(got), want)
	}
	wantScores := []int{3, 2, 1}
	for i, r := range got {
		if r.Score != wantScores[i] {
			t.Errorf("%s score = %d, want %d", r.Entry.Topic, r.Score, wantScores[i])
		}
	}
}

func TestRank_StableTies(t *testing.T) {
	entries := []*models.IndexEntry{
		{ID: "a", Topic: "Alpha", Keywords: []string{"shadow"}},
		{ID: "b", Topic: "Beta", Keywords: []string{"shadow"}},
		{ID: "c", Topic: "Shadows"},
		{ID: "d", Topic: "Delta", Keywords: []string{"shadow"}},
	}
	want := []string{"Shadows", "Alpha", "Beta", "Delta"}
	if got := topics(Rank(entries, "shadow")); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestRank_Cap(t *testing.T) {
	entries := make([]*models.IndexEntry, 25)
	for i := range entries {
		entries[i] = &models.IndexEntry{ID: fmt.Sprintf("e%d", i), Topic: fmt.Sprintf("Spacing %d", i)}
	}
	got := Rank(entries, "spacing")
	if len(got) != MaxResults {
		t.Fatalf("len = %d, want %d", len(got), MaxResults)
	}
	for i, r := range got {
		if r.Entry.ID != fmt.Sprintf("e%d", i) {
			t.Errorf("result %d = %s, want collection order", i, r.Entry.ID)
		}
	}
	if got := RankN(entries, "spacing", 5); len(got) != 5 {
		t.Errorf("RankN len = %d, want 5", len(got))
	}
	if got := RankN(entries, "spacing", 0); len(got) != MaxResults {
		t.Errorf("RankN(0) len = %d, want %d", len(got), MaxResults)
	}
}

func TestRank_Deterministic(t *testing.T) {
	entries := []*models.IndexEntry{
		{ID: "1", Topic: "Dark Mode", Description: "class strategy"},
		{ID: "2", Topic: "Dark variant", Keywords: []string{"dark:"}},
		{ID: "3", Topic: "Colors", Description: "dark palette"},
	}
	first := Rank(entries, "dark")
	second := Rank(entries, "dark")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ between calls: %v vs %v", topics(first), topics(second))
	}
}

func TestScore(t *testing.T) {
	grid := &models.IndexEntry{Topic: "Grid", SectionLabel: "CSS Grid"}
	tests := []struct {
		name  string
		entry *models.IndexEntry
		query string
		want  int
	}{
		{"prefix", grid, "gr", 3},
		{"prefix case-insensitive", grid, "  GRID ", 3},
		{"inside word is contains, not prefix", grid, "rid", 2},
		{"section label only", &models.IndexEntry{Topic: "Template Areas", SectionLabel: "CSS Grid"}, "css", 1},
		{"missing term", grid, "grid flex", 0},
		{"multi-term prefix", &models.IndexEntry{Topic: "Dark Mode Toggle"}, "dark mode", 3},
		{"multi-term not contiguous in topic", &models.IndexEntry{Topic: "Mode of Dark"}, "dark mode", 1},
		{"blank", grid, "   ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.entry, tt.query); got != tt.want {
				t.Errorf("Score(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestHaystack(t *testing.T) {
	e := &models.IndexEntry{
		Topic:        "Group Hover",
		SectionLabel: "State Variants",
		Description:  "Style children",
		Keywords:     []string{"group-hover", "Parent"},
	}
	want := "group hover state variants style children group-hover parent"
	if got := Haystack(e); got != want {
		t.Errorf("Haystack = %q, want %q", got, want)
	}
}

func TestMatchType_String(t *testing.T) {
	tests := map[MatchType]string{
		MatchTypeNone:          "none",
		MatchTypeHaystack:      "haystack",
		MatchTypeTopicContains: "topic_contains",
		MatchTypeTopicPrefix:   "topic_prefix",
		MatchType(9):           "unknown",
	}
	for m, want := range tests {
		if m.String() != want {
			t.Errorf("%d.String() = %q, want %q", m, m.String(), want)
		}
	}
	if (ScoredEntry{Score: 2}).MatchType() != MatchTypeTopicContains {
		t.Error("score 2 should map to topic_contains")
	}
}
