package reference

import (
	"context"
	"fmt"
	"os"

	"github.com/emedosmotr/vvk-validator/internal/llm"
	"github.com/emedosmotr/vvk-validator/internal/model"
	"gopkg.in/yaml.v3"
)

// criteriaFile is the YAML layout of the bulk-loaded criteria table.
type criteriaFile struct {
	Criteria []model.CriterionEntry `yaml:"criteria"`
}

// LoadFile reads a criteria table from a YAML file. Embeddings present in
// the file are kept; missing ones are computed in one pass via the provider
// so validation never embeds reference rows per-request.
func LoadFile(ctx context.Context, path string, provider llm.Provider) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read criteria file: %w", err)
	}

	var file criteriaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse criteria file: %w", err)
	}

	store := NewStore(file.Criteria)
	if err := store.Validate(); err != nil {
		return nil, fmt.Errorf("criteria file %s: %w", path, err)
	}

	if provider != nil {
		if err := EmbedMissing(ctx, store, provider); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// EmbedMissing computes embeddings for entries that lack one. Descriptions
// are batched through the provider; entries already carrying a vector are
// untouched.
func EmbedMissing(ctx context.Context, store *Store, provider llm.Provider) error {
	entries := store.Entries()

	var texts []string
	var missing []int
	for i := range entries {
		if len(entries[i].Embedding) == 0 {
			texts = append(texts, entries[i].Description)
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	vectors, err := provider.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d criteria descriptions: %w", len(missing), err)
	}

	updated := make([]model.CriterionEntry, len(entries))
	copy(updated, entries)
	for n, idx := range missing {
		updated[idx].Embedding = vectors[n]
	}
	store.Replace(updated)
	return nil
}
