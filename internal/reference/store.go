package reference

import (
	"fmt"
	"strings"
	"sync"

	"github.com/emedosmotr/vvk-validator/internal/model"
)

// Store holds the loaded criteria table. Reads are lock-free on a snapshot
// slice; Replace swaps the snapshot wholesale, which is how bulk reload
// works. Reload must not run concurrently with validation traffic beyond the
// snapshot swap itself.
type Store struct {
	mu      sync.RWMutex
	entries []model.CriterionEntry
}

// NewStore creates a store over the given entries.
func NewStore(entries []model.CriterionEntry) *Store {
	return &Store{entries: entries}
}

// Entries returns the current snapshot. Callers must not mutate it.
func (s *Store) Entries() []model.CriterionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries
}

// Len returns the number of loaded criteria.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Replace swaps the whole table, used by explicit refresh.
func (s *Store) Replace(entries []model.CriterionEntry) {
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

// emptySubpoint reports whether a stored or requested subpoint means "the
// article has no subdivisions". Upstream data uses NULL, "" and the literal
// string "null" interchangeably.
func emptySubpoint(sp string) bool {
	switch strings.TrimSpace(strings.ToLower(sp)) {
	case "", "null", "none":
		return true
	}
	return false
}

// Find returns the criterion for (article, subpoint). A request with an
// empty subpoint matches rows whose subpoint is absent, which is distinct
// from exact string matching on subdivided articles.
func (s *Store) Find(article int, subpoint string) (*model.CriterionEntry, bool) {
	entries := s.Entries()
	for i := range entries {
		e := &entries[i]
		if e.Article != article {
			continue
		}
		if emptySubpoint(subpoint) {
			if emptySubpoint(e.Subpoint) {
				return e, true
			}
			continue
		}
		if strings.TrimSpace(e.Subpoint) == strings.TrimSpace(subpoint) {
			return e, true
		}
	}
	return nil, false
}

// CategoryFor resolves the expected category for (article, subpoint, graph).
// Returns "" with found=false when the row is missing, and "" with
// found=true when the row exists but has no category for that graph.
func (s *Store) CategoryFor(article int, subpoint string, graph int) (category string, found bool) {
	entry, ok := s.Find(article, subpoint)
	if !ok {
		return "", false
	}
	return entry.CategoryForGraph(graph), true
}

// SubpointsFor lists the subpoints recorded for an article, in table order.
func (s *Store) SubpointsFor(article int) []string {
	var subpoints []string
	for _, e := range s.Entries() {
		if e.Article == article {
			subpoints = append(subpoints, e.Subpoint)
		}
	}
	return subpoints
}

// Validate sanity-checks the loaded table: every entry needs an article, a
// description and, when embeddings are present, a consistent vector length.
func (s *Store) Validate() error {
	entries := s.Entries()
	if len(entries) == 0 {
		return fmt.Errorf("reference table is empty")
	}

	dim := 0
	for i := range entries {
		e := &entries[i]
		if e.Article <= 0 {
			return fmt.Errorf("entry %d: article must be positive, got %d", i, e.Article)
		}
		if strings.TrimSpace(e.Description) == "" {
			return fmt.Errorf("entry %d (article %d/%s): empty description", i, e.Article, e.Subpoint)
		}
		if len(e.Embedding) == 0 {
			continue
		}
		if dim == 0 {
			dim = len(e.Embedding)
		} else if len(e.Embedding) != dim {
			return fmt.Errorf("entry %d (article %d/%s): embedding length %d, expected %d",
				i, e.Article, e.Subpoint, len(e.Embedding), dim)
		}
	}
	return nil
}
