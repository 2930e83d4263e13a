// Package search answers catalog queries and renders code blocks on top of the
// ranking and highlight packages, adding caching, suggestions, a query log and metrics.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/windguide/internal/cache"
	"github.com/hyperjump/windguide/internal/catalog"
	"github.com/hyperjump/windguide/internal/highlight"
	"github.com/hyperjump/windguide/internal/keyword"
	"github.com/hyperjump/windguide/internal/metrics"
	"github.com/hyperjump/windguide/internal/models"
	"github.com/hyperjump/windguide/internal/ranking"
	"github.com/hyperjump/windguide/internal/storage"
	"github.com/hyperjump/windguide/pkg/apperr"
)

// MaxCodeBytes bounds the size of a code sample accepted by Highlight.
const MaxCodeBytes = 256 << 10

const queryLogTimeout = 2 * time.Second

// Service runs searches against the current catalog snapshot.
type Service struct {
	holder      *catalog.Holder
	highlighter *highlight.Highlighter
	cache       *cache.QueryCache
	store       storage.Storage
	metrics     *metrics.Metrics
	logger      *zap.Logger
	hints       []string
	maxResults  int
	suggest     bool
	fuzziness   int
	source      string

	sugMu      sync.RWMutex
	sugVersion string
	suggester  *keyword.Suggester

	logWG sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCache enables result caching.
func WithCache(c *cache.QueryCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithQueryLog records every non-blank search in store.
func WithQueryLog(store storage.Storage) Option {
	return func(s *Service) { s.store = store }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithHighlighter replaces the default code highlighter.
func WithHighlighter(h *highlight.Highlighter) Option {
	return func(s *Service) {
		if h != nil {
			s.highlighter = h
		}
	}
}

// WithMaxResults lowers the result cap below models.MaxSearchLimit.
func WithMaxResults(n int) Option {
	return func(s *Service) {
		if n > 0 && n < s.maxResults {
			s.maxResults = n
		}
	}
}

// WithSuggestions turns "did you mean" suggestions on (the default) or off. fuzziness is the
// maximum edit distance (1 or 2).
func WithSuggestions(enabled bool, fuzziness int) Option {
	return func(s *Service) {
		s.suggest = enabled
		if fuzziness == 1 || fuzziness == 2 {
			s.fuzziness = fuzziness
		}
	}
}

// WithHints sets the example queries shown before the user types.
func WithHints(hints []string) Option {
	return func(s *Service) { s.hints = hints }
}

// WithSource labels query log records ("api", "cli").
func WithSource(source string) Option {
	return func(s *Service) { s.source = source }
}

// NewService creates a service reading snapshots from holder.
func NewService(holder *catalog.Holder, opts ...Option) *Service {
	s := &Service{
		holder:      holder,
		highlighter: highlight.NewHighlighter(),
		logger:      zap.NewNop(),
		hints:       catalog.DefaultHints(),
		maxResults:  models.MaxSearchLimit,
		suggest:     true,
		fuzziness:   2,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics != nil {
		s.metrics.CatalogEntries.Set(float64(holder.Load().Len()))
	}
	return s
}

// Search ranks the current catalog against q. A blank query returns no results.
// Failures of the cache, the suggester or the query log are logged and bypassed.
func (s *Service) Search(ctx context.Context, q *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()
	query := *q
	query.Normalize()
	if query.Limit > s.maxResults {
		query.Limit = s.maxResults
	}
	query.Suggest = query.Suggest && s.suggest

	snapshot := s.holder.Load()
	if query.IsBlank() {
		s.observe(metrics.OutcomeBlank, metrics.CacheStatusOff, 0, start)
		return &models.SearchResponse{Query: query.Query, Results: []*models.SearchResult{}}, nil
	}

	// The result may be cached and shared, so it must not depend on whether the
	// first caller goes away.
	compute := func() (*models.SearchResponse, error) {
		return s.rank(context.WithoutCancel(ctx), snapshot, query), nil
	}

	var (
		resp        *models.SearchResponse
		cached      bool
		cacheStatus = metrics.CacheStatusOff
		err         error
	)
	if s.cache != nil {
		resp, cached, err = s.cache.GetOrCompute(ctx, cache.Key(snapshot.Version(), query), compute)
		cacheStatus = metrics.CacheStatusMiss
		if cached {
			cacheStatus = metrics.CacheStatusHit
		}
	} else {
		resp, err = compute()
	}
	if err != nil {
		s.observe(metrics.OutcomeError, cacheStatus, 0, start)
		return nil, fmt.Errorf("search failed: %w", err)
	}

	// Responses may be shared between concurrent callers; copy before stamping.
	out := *resp
	out.Query = query.Query
	out.Cached = cached
	out.QueryTime = time.Since(start).Milliseconds()

	outcome := metrics.OutcomeHit
	if out.Total == 0 {
		outcome = metrics.OutcomeZero
	}
	s.observe(outcome, cacheStatus, out.Total, start)
	s.logQuery(query.Query, out.Total, time.Since(start))

	s.logger.Debug("search",
		zap.String("query", query.Query),
		zap.Int("results", out.Total),
		zap.Bool("cached", cached),
		zap.String("catalog", snapshot.Version()))
	return &out, nil
}

func (s *Service) rank(ctx context.Context, snapshot *catalog.Catalog, q models.SearchQuery) *models.SearchResponse {
	ranked := ranking.RankN(snapshot.Entries(), q.Query, q.Limit)

	resp := &models.SearchResponse{
		Query:   q.Query,
		Results: make([]*models.SearchResult, len(ranked)),
		Total:   len(ranked),
	}
	byID := make(map[string]*models.SearchResult, len(ranked))
	for i, r := range ranked {
		res := &models.SearchResult{
			Entry:  r.Entry,
			Score:  r.Score,
			Rank:   i + 1,
			Anchor: r.Entry.Anchor(),
			Highlights: map[string]string{
				"topic":       ranking.HighlightMatch(r.Entry.Topic, q.Query).HTML(),
				"description": ranking.HighlightMatch(r.Entry.Description, q.Query).HTML(),
			},
		}
		resp.Results[i] = res
		byID[r.Entry.ID] = res
	}

	if q.GroupBySection {
		for _, g := range ranking.GroupBySection(ranked) {
			group := &models.SectionGroup{SectionID: g.SectionID, Label: g.Label, Icon: g.Icon}
			for _, e := range g.Entries {
				group.Results = append(group.Results, byID[e.Entry.ID])
			}
			resp.Groups = append(resp.Groups, group)
		}
	}

	if len(ranked) == 0 && q.Suggest {
		resp.Suggestions = s.suggestions(ctx, snapshot, q.Query)
	}
	return resp
}

// maxSuggesterRebuilds bounds how often one search chases a suggester that
// concurrent reloads keep replacing.
const maxSuggesterRebuilds = 3

// suggestions runs the suggester for snapshot under the read lock, so a rebuild
// cannot close the index while it is in use.
func (s *Service) suggestions(ctx context.Context, snapshot *catalog.Catalog, query string) []string {
	for i := 0; i < maxSuggesterRebuilds; i++ {
		s.sugMu.RLock()
		if s.suggester != nil && s.sugVersion == snapshot.Version() {
			out, err := s.suggester.Suggest(ctx, query)
			s.sugMu.RUnlock()
			if err != nil {
				s.logger.Warn("suggestions failed", zap.String("query", query), zap.Error(err))
			}
			return out
		}
		s.sugMu.RUnlock()

		if err := s.rebuildSuggester(snapshot); err != nil {
			s.logger.Warn("suggester unavailable", zap.Error(err))
			return nil
		}
	}
	s.logger.Warn("suggester replaced by concurrent reloads; skipping suggestions",
		zap.String("query", query), zap.String("catalog", snapshot.Version()))
	return nil
}

// rebuildSuggester builds a suggester for snapshot. The previous one is closed
// only once the write lock shows no search is still using it.
func (s *Service) rebuildSuggester(snapshot *catalog.Catalog) error {
	s.sugMu.Lock()
	defer s.sugMu.Unlock()
	if s.suggester != nil && s.sugVersion == snapshot.Version() {
		return nil
	}
	sug, err := keyword.NewSuggester(snapshot.Entries(), keyword.WithMaxDistance(s.fuzziness))
	if err != nil {
		return err
	}
	if s.suggester != nil {
		_ = s.suggester.Close()
	}
	s.suggester, s.sugVersion = sug, snapshot.Version()
	return nil
}

func (s *Service) observe(outcome, cacheStatus string, results int, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	s.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
	if outcome != metrics.OutcomeBlank {
		s.metrics.SearchResultsCount.Observe(float64(results))
	}
}

// logQuery writes to the query log in the background so a slow database never
// delays a search. Close waits for pending writes.
func (s *Service) logQuery(query string, results int, took time.Duration) {
	if s.store == nil {
		return
	}
	rec := &models.QueryRecord{Query: query, Results: results, Took: took, Source: s.source}
	s.logWG.Add(1)
	go func() {
		defer s.logWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), queryLogTimeout)
		defer cancel()
		if err := s.store.RecordQuery(ctx, rec); err != nil {
			s.logger.Warn("failed to record query", zap.String("query", query), zap.Error(err))
		}
	}()
}

// Highlight renders a code sample as a numbered, highlighted block.
func (s *Service) Highlight(_ context.Context, req *models.HighlightRequest) (*models.HighlightResponse, error) {
	if req == nil {
		return nil, apperr.New(apperr.ErrInvalidInput, "missing request body")
	}
	if len(req.Code) > MaxCodeBytes {
		return nil, apperr.Newf(apperr.ErrInvalidInput, "code exceeds %d bytes", MaxCodeBytes)
	}
	resp := s.highlighter.Block(req)
	if s.metrics != nil {
		s.metrics.HighlightRequests.Inc()
		s.metrics.HighlightLines.Observe(float64(len(resp.Lines)))
	}
	return resp, nil
}

// Entry returns the entry with id from the current snapshot.
func (s *Service) Entry(id string) (*models.IndexEntry, error) {
	e, ok := s.holder.Load().Get(id)
	if !ok {
		return nil, apperr.Newf(apperr.ErrNotFound, "entry %q not found", id)
	}
	return e, nil
}

// SectionSummary is a section with the number of entries it holds.
type SectionSummary struct {
	models.Section
	Entries int `json:"entries"`
}

// Sections lists the section registry in reading order with entry counts.
func (s *Service) Sections() []SectionSummary {
	snapshot := s.holder.Load()
	counts := make(map[string]int)
	for _, e := range snapshot.Entries() {
		counts[e.SectionID]++
	}
	out := make([]SectionSummary, 0, len(snapshot.Sections()))
	for _, sec := range snapshot.Sections() {
		out = append(out, SectionSummary{Section: sec, Entries: counts[sec.ID]})
	}
	return out
}

// Hints returns the example queries shown before the user types.
func (s *Service) Hints() []string {
	return s.hints
}

// TopQueries returns the most frequent logged searches.
func (s *Service) TopQueries(ctx context.Context, limit int) ([]models.QueryStat, error) {
	if s.store == nil {
		return nil, apperr.New(apperr.ErrNotFound, "query log is disabled")
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.store.TopQueries(ctx, limit)
}

// Status summarizes the service for health checks.
type Status struct {
	CatalogVersion string `json:"catalog_version"`
	Entries        int    `json:"entries"`
	Sections       int    `json:"sections"`
	CacheHits      int64  `json:"cache_hits"`
	CacheMisses    int64  `json:"cache_misses"`
	LoggedQueries  int64  `json:"logged_queries,omitempty"`
}

// Status reports the current snapshot and cache counters.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	snapshot := s.holder.Load()
	st := &Status{
		CatalogVersion: snapshot.Version(),
		Entries:        snapshot.Len(),
		Sections:       len(snapshot.Sections()),
	}
	if s.cache != nil {
		st.CacheHits, st.CacheMisses = s.cache.Stats()
	}
	if s.store != nil {
		n, err := s.store.CountQueries(ctx)
		if err != nil {
			return st, fmt.Errorf("failed to count queries: %w", err)
		}
		st.LoggedQueries = n
	}
	return st, nil
}

// CatalogReloaded records a reload attempt. After a successful one it updates the
// entry gauge and drops cached responses.
func (s *Service) CatalogReloaded(ctx context.Context, c *catalog.Catalog, err error) {
	if err != nil {
		if s.metrics != nil {
			s.metrics.CatalogReloadsTotal.WithLabelValues("failed").Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.CatalogEntries.Set(float64(c.Len()))
		s.metrics.CatalogReloadsTotal.WithLabelValues("ok").Inc()
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("failed to invalidate cache after reload", zap.Error(err))
		}
	}
}

// Close waits for pending query log writes and releases the suggester.
func (s *Service) Close() error {
	s.logWG.Wait()
	s.sugMu.Lock()
	defer s.sugMu.Unlock()
	var errs []error
	if s.suggester != nil {
		errs = append(errs, s.suggester.Close())
		s.suggester = nil
	}
	return errors.Join(errs...)
}
