package model

// CriterionEntry is one row of the statutory reference table: a medical
// condition description with the fitness category it maps to for each of the
// four conscription graphs. Entries are bulk-loaded once and read-only during
// validation; the embedding is computed at load time and never mutated.
type CriterionEntry struct {
	Article     int            `json:"article" yaml:"article"`
	Subpoint    string         `json:"subpoint,omitempty" yaml:"subpoint,omitempty"`
	Description string         `json:"description" yaml:"description"`
	Embedding   []float32      `json:"-" yaml:"embedding,omitempty"`
	Categories  map[int]string `json:"categories" yaml:"categories"`
}

// CategoryForGraph returns the expected category for the given graph, or ""
// when the reference table has no entry for that column.
func (c *CriterionEntry) CategoryForGraph(graph int) string {
	return c.Categories[graph]
}

// CriterionMatch is a retrieval hit: a criterion entry summary plus how
// similar it was to the query text.
type CriterionMatch struct {
	Article     int            `json:"article"`
	Subpoint    string         `json:"subpoint,omitempty"`
	Description string         `json:"description"`
	Similarity  float64        `json:"similarity"`
	Categories  map[int]string `json:"categories,omitempty"`
}
