// Package retrieval ranks statutory criteria against free text by embedding
// similarity.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/emedosmotr/vvk-validator/internal/cache"
	"github.com/emedosmotr/vvk-validator/internal/llm"
	"github.com/emedosmotr/vvk-validator/internal/model"
	"github.com/emedosmotr/vvk-validator/internal/reference"
)

// DefaultMinQueryChars is the minimum trimmed query length; anything shorter
// is treated as "nothing to search for" rather than embedded as noise.
const DefaultMinQueryChars = 10

// Searcher embeds query text and ranks reference criteria by cosine
// similarity. It is safe for concurrent use; the store snapshot is read-only
// during a search.
type Searcher struct {
	provider      llm.Provider
	store         *reference.Store
	vectors       *cache.VectorStore
	minQueryChars int
}

// NewSearcher creates a searcher. The cache may be nil to disable embedding
// memoization.
func NewSearcher(provider llm.Provider, store *reference.Store, c cache.Cache, embeddingModel string, cacheTTL time.Duration) *Searcher {
	return &Searcher{
		provider:      provider,
		store:         store,
		vectors:       cache.NewVectorStore(c, embeddingModel, cacheTTL),
		minQueryChars: DefaultMinQueryChars,
	}
}

// Search embeds the query and returns up to topK criteria sorted by
// descending similarity, rounded to 4 decimals. A negative threshold
// disables the cutoff; articleFilter restricts the scan to one article.
// Queries below the minimum trimmed length return an empty result.
func (s *Searcher) Search(ctx context.Context, query string, topK int, threshold float64, articleFilter *int) ([]model.CriterionMatch, error) {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < s.minQueryChars {
		return nil, nil
	}
	if s.provider == nil {
		return nil, fmt.Errorf("no embedding provider configured")
	}
	if topK <= 0 {
		topK = 5
	}

	queryVec, err := s.embed(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	entries := s.store.Entries()
	matches := make([]model.CriterionMatch, 0, topK)
	for i := range entries {
		e := &entries[i]
		if articleFilter != nil && e.Article != *articleFilter {
			continue
		}
		if len(e.Embedding) == 0 {
			continue
		}
		matches = append(matches, model.CriterionMatch{
			Article:     e.Article,
			Subpoint:    e.Subpoint,
			Description: e.Description,
			Similarity:  roundSimilarity(cosineSimilarity(queryVec, e.Embedding)),
			Categories:  e.Categories,
		})
	}

	// Stable sort keeps store iteration order for equal similarities.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	if threshold >= 0 {
		kept := matches[:0]
		for _, m := range matches {
			if m.Similarity >= threshold {
				kept = append(kept, m)
			}
		}
		matches = kept
	}
	return matches, nil
}

// SearchSimilar is the diagnostics entry point: top-K matches for a text at
// the given threshold, no article filter.
func (s *Searcher) SearchSimilar(ctx context.Context, text string, topK int, threshold float64) ([]model.CriterionMatch, error) {
	return s.Search(ctx, text, topK, threshold, nil)
}

func (s *Searcher) embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := s.vectors.Get(text); ok {
		return vec, nil
	}

	vec, err := s.provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.vectors.Put(text, vec)
	return vec, nil
}
