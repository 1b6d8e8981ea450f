// Package adminresolve performs the deterministic category lookup: given a
// statute article and subpoint, resolve the fitness category for the
// conscription graph from the loaded criteria.
package adminresolve

import (
	"fmt"

	"github.com/emedosmotr/vvk-validator/internal/clinical"
	"github.com/emedosmotr/vvk-validator/internal/model"
	"github.com/emedosmotr/vvk-validator/internal/reference"
)

// Resolution is the outcome of the lookup.
type Resolution struct {
	Status   model.StageStatus
	Category string
	Article  *int
	Subpoint string
	Reason   string
}

// Resolver resolves categories against the criteria store.
type Resolver struct {
	store *reference.Store
}

// NewResolver builds a resolver over the given store.
func NewResolver(store *reference.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve maps a classification to a fitness category. A healthy conscript
// is always А without consulting the store. When the classification names no
// article the lookup is skipped; the record carries nothing to resolve.
func (r *Resolver) Resolve(classification *clinical.Classification, graph int) Resolution {
	if classification == nil {
		return Resolution{
			Status: model.StageSkipped,
			Reason: "классификация не выполнена",
		}
	}

	if classification.IsHealthy {
		return Resolution{
			Status:   model.StageSuccess,
			Category: reference.CategoryFullyFit,
			Reason:   "здоров, категория А",
		}
	}

	if classification.Article == nil {
		return Resolution{
			Status: model.StageSkipped,
			Reason: "статья не определена, поиск категории пропущен",
		}
	}

	article := *classification.Article
	subpoint := ""
	if classification.Subpoint != nil {
		subpoint = *classification.Subpoint
	}

	category, found := r.store.CategoryFor(article, subpoint, graph)
	if !found || category == "" {
		return Resolution{
			Status:   model.StageError,
			Article:  classification.Article,
			Subpoint: subpoint,
			Reason: fmt.Sprintf(
				"категория для статьи %d, подпункта %q, графы %d не найдена в справочнике",
				article, subpoint, graph),
		}
	}

	return Resolution{
		Status:   model.StageSuccess,
		Category: category,
		Article:  classification.Article,
		Subpoint: subpoint,
		Reason: fmt.Sprintf("статья %d, подпункт %q, графа %d: категория %s",
			article, subpoint, graph, category),
	}
}
