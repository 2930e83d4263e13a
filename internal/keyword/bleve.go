// Package keyword offers typo-tolerant suggestions over the catalog when the exact
// ranker finds nothing. A memory-only Bleve index supplies the term dictionary and
// fuzzy matching.
package keyword

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/windguide/internal/models"
)

// Indexed fields. Topic matches are weighted above the rest.
const (
	fieldTopic       = "topic"
	fieldSection     = "section"
	fieldDescription = "description"
	fieldKeywords    = "keywords"
)

var textFields = []string{fieldTopic, fieldSection, fieldDescription, fieldKeywords}

// Hit is one entry matched by a fuzzy query.
type Hit struct {
	ID    string
	Score float64
}

// Index is an in-memory Bleve index over catalog entries.
type Index struct {
	index bleve.Index
	terms map[string]int // term -> document frequency across all fields
}

func newMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) keeps class names like
	// "flex" and "grid" intact in the dictionary.
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	for _, f := range textFields {
		docMapping.AddFieldMappingsAt(f, textFieldMapping)
	}
	im.AddDocumentMapping("entry", docMapping)
	im.DefaultType = "entry"
	im.DefaultMapping = docMapping
	return im
}

// NewIndex indexes entries into a memory-only Bleve index.
func NewIndex(entries []*models.IndexEntry) (*Index, error) {
	idx, err := bleve.NewMemOnly(newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	batch := idx.NewBatch()
	for _, e := range entries {
		doc := map[string]interface{}{
			fieldTopic:       e.Topic,
			fieldSection:     e.SectionLabel,
			fieldDescription: e.Description,
			fieldKeywords:    strings.Join(e.Keywords, " "),
		}
		if err := batch.Index(e.ID, doc); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("failed to index entry %q: %w", e.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("failed to index entries: %w", err)
	}

	terms, err := collectTerms(idx)
	if err != nil {
		_ = idx.Close()
		return nil, err
	}
	return &Index{index: idx, terms: terms}, nil
}

func collectTerms(idx bleve.Index) (map[string]int, error) {
	terms := make(map[string]int)
	for _, f := range textFields {
		dict, err := idx.FieldDict(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s dictionary: %w", f, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil {
				_ = dict.Close()
				return nil, fmt.Errorf("failed to read %s dictionary: %w", f, err)
			}
			if entry == nil {
				break
			}
			if int(entry.Count) > terms[entry.Term] {
				terms[entry.Term] = int(entry.Count)
			}
		}
		_ = dict.Close()
	}
	return terms, nil
}

// Fuzzy returns entries matching any query term within fuzziness edits, best first.
func (x *Index) Fuzzy(ctx context.Context, query string, fuzziness, limit int) ([]Hit, error) {
	terms := tokenizeQuery(query)
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}
	queries := make([]blevequery.Query, 0, len(terms)*2)
	for _, term := range terms {
		for _, field := range []string{fieldTopic, ""} {
			fq := bleve.NewFuzzyQuery(term)
			fq.SetFuzziness(fuzziness)
			if field != "" {
				fq.SetField(field)
				fq.SetBoost(2)
			}
			queries = append(queries, fq)
		}
	}
	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(queries...))
	req.Size = limit
	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]Hit, len(res.Hits))
	for i, h := range res.Hits {
		out[i] = Hit{ID: h.ID, Score: h.Score}
	}
	return out, nil
}

// Terms returns the dictionary in lexical order.
func (x *Index) Terms() []string {
	out := make([]string, 0, len(x.terms))
	for t := range x.terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// DocCount returns the number of indexed entries.
func (x *Index) DocCount() (uint64, error) {
	return x.index.DocCount()
}

// Close releases the index.
func (x *Index) Close() error {
	return x.index.Close()
}

// tokenizeQuery splits query into lowercase terms.
func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
