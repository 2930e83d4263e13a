package search

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/windguide/internal/cache"
	"github.com/hyperjump/windguide/internal/catalog"
	"github.com/hyperjump/windguide/internal/metrics"
	"github.com/hyperjump/windguide/internal/models"
	"github.com/hyperjump/windguide/internal/storage"
	"github.com/hyperjump/windguide/pkg/apperr"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]*models.IndexEntry{
		{ID: "flex", Topic: "Flex container", SectionID: "flexbox", Description: "Turn on flex layout", Keywords: []string{"flex", "display"}},
		{ID: "grid", Topic: "Grid gap", SectionID: "grid", Description: "Gutters between tracks", Keywords: []string{"gap-4"}},
		{ID: "dir", Topic: "Flex direction", SectionID: "flexbox", Description: "Rows or columns", Keywords: []string{"flex-row", "flex-col"}},
		{ID: "inline", Topic: "Inline elements", SectionID: "typography", Description: "Use inline-flex for icons", Keywords: []string{"inline-flex"}},
	}, nil)
	require.NoError(t, err)
	return c
}

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	s := NewService(catalog.NewHolder(testCatalog(t)), opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestService_Search(t *testing.T) {
	s := newTestService(t)
	resp, err := s.Search(context.Background(), &models.SearchQuery{Query: "Flex"})
	require.NoError(t, err)

	require.Equal(t, 3, resp.Total)
	ids := []string{resp.Results[0].Entry.ID, resp.Results[1].Entry.ID, resp.Results[2].Entry.ID}
	assert.Equal(t, []string{"flex", "dir", "inline"}, ids)
	assert.Equal(t, 3, resp.Results[0].Score)
	assert.Equal(t, 1, resp.Results[2].Score)
	assert.Equal(t, 1, resp.Results[0].Rank)
	assert.Equal(t, "#flexbox", resp.Results[0].Anchor)
	assert.Equal(t, "<mark>Flex</mark> container", resp.Results[0].Highlights["topic"])
	assert.Equal(t, "Use inline-<mark>flex</mark> for icons", resp.Results[2].Highlights["description"])
	assert.Nil(t, resp.Groups)
	assert.False(t, resp.Cached)
}

func TestService_SearchBlank(t *testing.T) {
	s := newTestService(t)
	resp, err := s.Search(context.Background(), &models.SearchQuery{Query: "   "})
	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, resp.Total)
}

func TestService_SearchDoesNotMutateInput(t *testing.T) {
	s := newTestService(t)
	q := &models.SearchQuery{Query: "  flex  ", Limit: 500}
	_, err := s.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "  flex  ", q.Query)
	assert.Equal(t, 500, q.Limit)
}

func TestService_SearchLimit(t *testing.T) {
	s := newTestService(t, WithMaxResults(2))
	resp, err := s.Search(context.Background(), &models.SearchQuery{Query: "flex", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	resp, err = s.Search(context.Background(), &models.SearchQuery{Query: "flex", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
}

func TestService_SearchGroups(t *testing.T) {
	s := newTestService(t)
	resp, err := s.Search(context.Background(), &models.SearchQuery{Query: "flex", GroupBySection: true})
	require.NoError(t, err)
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, "flexbox", resp.Groups[0].SectionID)
	assert.Equal(t, "Flexbox", resp.Groups[0].Label)
	require.Len(t, resp.Groups[0].Results, 2)
	assert.Same(t, resp.Results[0], resp.Groups[0].Results[0])
	assert.Equal(t, "typography", resp.Groups[1].SectionID)
}

func TestService_Suggestions(t *testing.T) {
	s := newTestService(t, WithSuggestions(true, 2))

	resp, err := s.Search(context.Background(), &models.SearchQuery{Query: "gird", Suggest: true})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Total)
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "grid", resp.Suggestions[0])

	// Only requested suggestions are computed.
	resp, err = s.Search(context.Background(), &models.SearchQuery{Query: "gird"})
	require.NoError(t, err)
	assert.Empty(t, resp.Suggestions)

	// Matches never carry suggestions.
	resp, err = s.Search(context.Background(), &models.SearchQuery{Query: "grid", Suggest: true})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Total)
	assert.Empty(t, resp.Suggestions)
}

func TestService_SuggestionsDisabled(t *testing.T) {
	s := newTestService(t, WithSuggestions(false, 2))
	resp, err := s.Search(context.Background(), &models.SearchQuery{Query: "gird", Suggest: true})
	require.NoError(t, err)
	assert.Empty(t, resp.Suggestions)
}

func TestService_SuggesterFollowsReload(t *testing.T) {
	holder := catalog.NewHolder(testCatalog(t))
	s := NewService(holder, WithSuggestions(true, 2))
	defer s.Close()

	_, err := s.Search(context.Background(), &models.SearchQuery{Query: "gird", Suggest: true})
	require.NoError(t, err)

	next, err := catalog.New([]*models.IndexEntry{{ID: "blur", Topic: "Blur", SectionID: "shadows", Keywords: []string{"backdrop"}}}, nil)
	require.NoError(t, err)
	holder.Swap(next)

	resp, err := s.Search(context.Background(), &models.SearchQuery{Query: "blurr", Suggest: true})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Suggestions)
	assert.Equal(t, "blur", resp.Suggestions[0])
}

func TestService_Cache(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	qc := cache.New(cache.NewMemoryStore(16, 0), nil)
	s := newTestService(t, WithCache(qc), WithMetrics(m))

	first, err := s.Search(context.Background(), &models.SearchQuery{Query: "flex"})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := s.Search(context.Background(), &models.SearchQuery{Query: " FLEX "})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Results[0].Entry.ID, second.Results[0].Entry.ID)

	hits, _ := qc.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(metrics.OutcomeHit)))
}

func TestService_CacheKeyFollowsCatalogVersion(t *testing.T) {
	holder := catalog.NewHolder(testCatalog(t))
	s := NewService(holder, WithCache(cache.New(cache.NewMemoryStore(16, 0), nil)))
	defer s.Close()

	resp, err := s.Search(context.Background(), &models.SearchQuery{Query: "blur"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Total)

	next, err := catalog.New([]*models.IndexEntry{{ID: "blur", Topic: "Blur", SectionID: "shadows"}}, nil)
	require.NoError(t, err)
	holder.Swap(next)

	resp, err = s.Search(context.Background(), &models.SearchQuery{Query: "blur"})
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Equal(t, 1, resp.Total)
}

func TestService_Metrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	s := newTestService(t, WithMetrics(m))
	ctx := context.Background()

	assert.Equal(t, 4.0, testutil.ToFloat64(m.CatalogEntries))

	_, _ = s.Search(ctx, &models.SearchQuery{Query: "flex"})
	_, _ = s.Search(ctx, &models.SearchQuery{Query: "zzz"})
	_, _ = s.Search(ctx, &models.SearchQuery{Query: ""})
	_, _ = s.Highlight(ctx, &models.HighlightRequest{Code: "const a = 1\nconst b = 2"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(metrics.OutcomeHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(metrics.OutcomeZero)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues(metrics.OutcomeBlank)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HighlightRequests))

	next, _ := catalog.New(nil, nil)
	s.CatalogReloaded(ctx, next, nil)
	s.CatalogReloaded(ctx, nil, errors.New("bad yaml"))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CatalogEntries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogReloadsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CatalogReloadsTotal.WithLabelValues("failed")))
}

func TestService_QueryLog(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "log.db"))
	require.NoError(t, err)
	defer store.Close()

	s := NewService(catalog.NewHolder(testCatalog(t)), WithQueryLog(store), WithSource("cli"))
	ctx := context.Background()
	for _, q := range []string{"flex", "Flex", "grid", "  "} {
		_, err := s.Search(ctx, &models.SearchQuery{Query: q})
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	top, err := s.TopQueries(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "flex", top[0].Query)
	assert.Equal(t, int64(2), top[0].Count)

	st, err := s.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.LoggedQueries)
	assert.Equal(t, 4, st.Entries)
}

func TestService_TopQueriesWithoutLog(t *testing.T) {
	s := newTestService(t)
	_, err := s.TopQueries(context.Background(), 5)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Highlight(t *testing.T) {
	s := newTestService(t)
	resp, err := s.Highlight(context.Background(), &models.HighlightRequest{Code: "\n<div className=\"p-4\">\n\n</div>\n", Filename: "App.jsx"})
	require.NoError(t, err)
	assert.Equal(t, "jsx", resp.Language)
	assert.Equal(t, "App.jsx", resp.Filename)
	require.Len(t, resp.Lines, 3)
	assert.Equal(t, 1, resp.Lines[0].Number)
	assert.Contains(t, resp.Lines[0].HTML, `<span class="text-sky-400">&lt;div</span>`)
	assert.Equal(t, "\u00a0", resp.Lines[1].HTML)

	_, err = s.Highlight(context.Background(), &models.HighlightRequest{Code: strings.Repeat("a", MaxCodeBytes+1)})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = s.Highlight(context.Background(), nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestService_EntrySectionsHints(t *testing.T) {
	s := newTestService(t, WithHints([]string{"flex"}))

	e, err := s.Entry("grid")
	require.NoError(t, err)
	assert.Equal(t, "Grid gap", e.Topic)

	_, err = s.Entry("nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	sections := s.Sections()
	require.Len(t, sections, len(catalog.DefaultSections()))
	counts := map[string]int{}
	for _, sec := range sections {
		counts[sec.ID] = sec.Entries
	}
	assert.Equal(t, 2, counts["flexbox"])
	assert.Equal(t, 0, counts["colors"])

	assert.Equal(t, []string{"flex"}, s.Hints())
}

func TestService_CachedResponseEchoesQuery(t *testing.T) {
	s := newTestService(t, WithCache(cache.New(cache.NewMemoryStore(16, 0), nil)))

	first, err := s.Search(context.Background(), &models.SearchQuery{Query: "FLEX"})
	require.NoError(t, err)
	assert.Equal(t, "FLEX", first.Query)

	second, err := s.Search(context.Background(), &models.SearchQuery{Query: "flex"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "flex", second.Query)
	assert.Equal(t, "FLEX", first.Query, "earlier response must not change")
}

func TestService_CanceledCallerDoesNotPoisonCache(t *testing.T) {
	s := newTestService(t, WithCache(cache.New(cache.NewMemoryStore(16, 0), nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp, err := s.Search(ctx, &models.SearchQuery{Query: "gird", Suggest: true})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Suggestions)

	cached, err := s.Search(context.Background(), &models.SearchQuery{Query: "gird", Suggest: true})
	require.NoError(t, err)
	assert.True(t, cached.Cached)
	assert.Equal(t, resp.Suggestions, cached.Suggestions)
}

func TestService_RebuildWaitsForSuggestInFlight(t *testing.T) {
	holder := catalog.NewHolder(testCatalog(t))
	s := NewService(holder)
	defer s.Close()

	old := holder.Load()
	require.NotNil(t, s.suggestions(context.Background(), old, "gird"))

	next, err := catalog.New([]*models.IndexEntry{{ID: "blur", Topic: "Blur", SectionID: "shadows"}}, nil)
	require.NoError(t, err)

	// Hold the read lock as a search running Suggest would.
	s.sugMu.RLock()
	inUse := s.suggester
	rebuilt := make(chan error, 1)
	go func() { rebuilt <- s.rebuildSuggester(next) }()

	select {
	case <-rebuilt:
		t.Fatal("rebuild closed the suggester while it was in use")
	case <-time.After(50 * time.Millisecond):
	}
	got, err := inUse.Suggest(context.Background(), "gird")
	require.NoError(t, err)
	assert.Contains(t, got, "grid")
	s.sugMu.RUnlock()

	require.NoError(t, <-rebuilt)
	assert.Equal(t, next.Version(), s.sugVersion)
}

func TestService_ConcurrentSuggestDuringReloads(t *testing.T) {
	holder := catalog.NewHolder(testCatalog(t))
	s := NewService(holder)
	defer s.Close()

	other, err := catalog.New([]*models.IndexEntry{{ID: "grid2", Topic: "Grid rows", SectionID: "grid"}}, nil)
	require.NoError(t, err)
	snapshots := []*catalog.Catalog{holder.Load(), other}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				holder.Swap(snapshots[(i+j)%2])
				_, err := s.Search(context.Background(), &models.SearchQuery{Query: "gird", Suggest: true})
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()
}
