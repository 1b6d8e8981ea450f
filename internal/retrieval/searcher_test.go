package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emedosmotr/vvk-validator/internal/cache"
	"github.com/emedosmotr/vvk-validator/internal/llm"
	"github.com/emedosmotr/vvk-validator/internal/model"
	"github.com/emedosmotr/vvk-validator/internal/reference"
)

// fakeEmbedder returns a fixed vector for every query.
type fakeEmbedder struct {
	llm.Provider
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func testStore() *reference.Store {
	return reference.NewStore([]model.CriterionEntry{
		{Article: 1, Subpoint: "а", Description: "перпендикулярное описание", Embedding: []float32{0, 1}, Categories: map[int]string{1: "Д"}},
		{Article: 2, Subpoint: "б", Description: "близкое описание", Embedding: []float32{1, 0.1}, Categories: map[int]string{1: "В"}},
		{Article: 3, Subpoint: "в", Description: "точное описание", Embedding: []float32{1, 0}, Categories: map[int]string{1: "Б"}},
		{Article: 3, Subpoint: "г", Description: "без вектора", Categories: map[int]string{1: "А"}},
	})
}

func TestSearchSortsBySimilarity(t *testing.T) {
	s := NewSearcher(&fakeEmbedder{vector: []float32{1, 0}}, testStore(), nil, "embed-model", 0)

	matches, err := s.Search(context.Background(), "гипертоническая болезнь", 5, -1, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3 (entry without embedding skipped)", len(matches))
	}
	if matches[0].Article != 3 || matches[1].Article != 2 || matches[2].Article != 1 {
		t.Errorf("order = %d,%d,%d; want 3,2,1", matches[0].Article, matches[1].Article, matches[2].Article)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Similarity > matches[i-1].Similarity {
			t.Errorf("similarities not non-increasing: %v", matches)
		}
	}
	for _, m := range matches {
		if m.Similarity < 0 || m.Similarity > 1 {
			t.Errorf("similarity %v out of [0,1]", m.Similarity)
		}
	}
}

func TestSearchThresholdAfterTopK(t *testing.T) {
	s := NewSearcher(&fakeEmbedder{vector: []float32{1, 0}}, testStore(), nil, "embed-model", 0)

	matches, err := s.Search(context.Background(), "гипертоническая болезнь", 2, 0.999, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// Top-2 are articles 3 and 2; only article 3 (similarity 1.0) clears the
	// cutoff.
	if len(matches) != 1 || matches[0].Article != 3 {
		t.Errorf("matches = %+v, want only article 3", matches)
	}
}

func TestSearchArticleFilter(t *testing.T) {
	s := NewSearcher(&fakeEmbedder{vector: []float32{1, 0}}, testStore(), nil, "embed-model", 0)

	article := 2
	matches, err := s.Search(context.Background(), "гипертоническая болезнь", 5, -1, &article)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 || matches[0].Article != 2 {
		t.Errorf("matches = %+v, want only article 2", matches)
	}
}

func TestSearchShortQueryReturnsEmpty(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	s := NewSearcher(embedder, testStore(), nil, "embed-model", 0)

	matches, err := s.Search(context.Background(), "  короткий ", 5, -1, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if matches != nil {
		t.Errorf("matches = %+v, want nil for short query", matches)
	}
	if embedder.calls != 0 {
		t.Error("short query must not reach the embedder")
	}
}

func TestSearchEmbedError(t *testing.T) {
	s := NewSearcher(&fakeEmbedder{err: errors.New("api down")}, testStore(), nil, "embed-model", 0)

	if _, err := s.Search(context.Background(), "гипертоническая болезнь", 5, -1, nil); err == nil {
		t.Fatal("expected embed error to surface")
	}
}

func TestSearchUsesEmbeddingCache(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	s := NewSearcher(embedder, testStore(), c, "embed-model", time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := s.Search(context.Background(), "гипертоническая болезнь", 5, -1, nil); err != nil {
			t.Fatalf("Search: %v", err)
		}
	}
	if embedder.calls != 1 {
		t.Errorf("embedder calls = %d, want 1 (cache hit)", embedder.calls)
	}
}

func TestSearchRecoversFromCorruptCacheEntry(t *testing.T) {
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	query := "гипертоническая болезнь"
	_ = c.Set(cache.EmbeddingKey("embed-model", query), []byte{1, 2, 3}, time.Minute)

	s := NewSearcher(embedder, testStore(), c, "embed-model", time.Minute)
	matches, err := s.Search(context.Background(), query, 5, -1, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected matches after re-embedding")
	}
	if embedder.calls != 1 {
		t.Errorf("embedder calls = %d, want 1 after corrupt entry", embedder.calls)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoundSimilarityClamps(t *testing.T) {
	if got := roundSimilarity(1.00004); got != 1 {
		t.Errorf("roundSimilarity(1.00004) = %v, want 1", got)
	}
	if got := roundSimilarity(-0.2); got != 0 {
		t.Errorf("roundSimilarity(-0.2) = %v, want 0", got)
	}
	if got := roundSimilarity(0.654321); got != 0.6543 {
		t.Errorf("roundSimilarity(0.654321) = %v, want 0.6543", got)
	}
}
