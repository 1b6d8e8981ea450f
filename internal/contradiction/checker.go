// Package contradiction implements the field-consistency checks over a
// single specialist's examination record. The checker does not decide what
// is true; it signals inconsistencies for the commission chair.
package contradiction

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/emedosmotr/vvk-validator/internal/model"
	"github.com/emedosmotr/vvk-validator/internal/reference"
	"github.com/emedosmotr/vvk-validator/internal/textscan"
)

// Retrieval thresholds. Supplementary fields use a higher cutoff than the
// diagnosis itself: a stray anamnesis phrase must match a criterion closely
// before it is allowed to contradict the doctor.
const (
	diagnosisThreshold     = 0.65
	supplementaryThreshold = 0.70
	categoryThreshold      = 0.70

	// minFieldChars is the minimum trimmed length for a supplementary field
	// to participate in any check.
	minFieldChars = 10

	// criticalOrdinal marks the category rank (Д and worse) at which a
	// cross-article discrepancy becomes critical.
	criticalOrdinal = 5
)

// CriteriaSearcher is the slice of the retriever the checker needs.
type CriteriaSearcher interface {
	Search(ctx context.Context, query string, topK int, threshold float64, articleFilter *int) ([]model.CriterionMatch, error)
}

// Checker runs the six contradiction checks.
type Checker struct {
	searcher CriteriaSearcher
	verbose  bool
}

// NewChecker creates a checker over the given retriever.
func NewChecker(searcher CriteriaSearcher, verbose bool) *Checker {
	return &Checker{searcher: searcher, verbose: verbose}
}

// Check runs all checks and returns the findings in reporting order. A check
// that finds nothing contributes nothing. Retrieval failures degrade the
// affected check to "no finding"; they never abort the record.
func (c *Checker) Check(ctx context.Context, record *model.ExaminationRecord) []model.Finding {
	fields := nonEmptyFields(record)

	var findings []model.Finding
	checks := []func(context.Context, *model.ExaminationRecord, []model.SupplementaryField) *model.Finding{
		c.checkHealthyWrongCategory,    // E: fast, no retrieval
		c.checkSevereWithFitCategory,   // F: fast, no retrieval
		c.checkHealthyVsDisease,        // A
		c.checkDiseaseVsHealthy,        // B
		c.checkConflictingDiseases,     // C
		c.checkCategoryAgainstCriteria, // D
	}
	for _, check := range checks {
		if f := check(ctx, record, fields); f != nil {
			findings = append(findings, *f)
		}
	}

	if c.verbose {
		fmt.Fprintf(os.Stderr, "contradiction check: %d finding(s)\n", len(findings))
	}
	return findings
}

// nonEmptyFields filters supplementary fields below the participation
// minimum.
func nonEmptyFields(record *model.ExaminationRecord) []model.SupplementaryField {
	var fields []model.SupplementaryField
	for _, f := range record.SupplementaryFields() {
		if utf8.RuneCountInString(strings.TrimSpace(f.Value)) >= minFieldChars {
			fields = append(fields, f)
		}
	}
	return fields
}

// checkHealthyWrongCategory: the diagnosis says healthy but the category is
// not А. A healthy conscript can only be А.
func (c *Checker) checkHealthyWrongCategory(_ context.Context, record *model.ExaminationRecord, _ []model.SupplementaryField) *model.Finding {
	if !textscan.IsHealthy(record.DiagnosisText) {
		return nil
	}
	if reference.IsFullyFit(record.DoctorCategory) {
		return nil
	}

	return &model.Finding{
		Type:     model.TypeLogicalError,
		Severity: model.SeverityHigh,
		Description: fmt.Sprintf(
			"ЛОГИЧЕСКАЯ ОШИБКА: Диагноз указывает 'Здоров', но категория годности '%s' вместо 'А'. "+
				"Если призывник здоров, категория должна быть только 'А'.",
			record.DoctorCategory),
		SourceField:    "diagnosis_text",
		TargetField:    "doctor_category",
		SourceValue:    truncate(record.DiagnosisText, 200),
		TargetValue:    record.DoctorCategory,
		Recommendation: "Уточнить диагноз или исправить категорию годности",
	}
}

// checkSevereWithFitCategory: the diagnosis names a severe condition yet the
// category is А. Severe conditions are incompatible with full fitness.
func (c *Checker) checkSevereWithFitCategory(_ context.Context, record *model.ExaminationRecord, _ []model.SupplementaryField) *model.Finding {
	if !reference.IsFullyFit(record.DoctorCategory) {
		return nil
	}

	keyword, found := textscan.SevereCondition(record.DiagnosisText)
	if !found {
		return nil
	}

	return &model.Finding{
		Type:     model.TypeObviousMismatch,
		Severity: model.SeverityCritical,
		Description: fmt.Sprintf(
			"КРИТИЧЕСКАЯ ОШИБКА: Диагноз содержит признаки тяжелого заболевания ('%s'), "+
				"но категория годности 'А' (полностью годен). "+
				"Тяжелые заболевания несовместимы с категорией 'А'.",
			keyword),
		SourceField:    "diagnosis_text",
		TargetField:    "doctor_category",
		SourceValue:    truncate(record.DiagnosisText, 300),
		TargetValue:    record.DoctorCategory,
		Recommendation: "СРОЧНО: Пересмотреть категорию годности. Вероятна механическая ошибка при заполнении.",
	}
}

// checkHealthyVsDisease: healthy diagnosis, but a supplementary field
// retrieves disease criteria with high similarity.
func (c *Checker) checkHealthyVsDisease(ctx context.Context, record *model.ExaminationRecord, fields []model.SupplementaryField) *model.Finding {
	if !textscan.IsHealthy(record.DiagnosisText) {
		return nil
	}

	for _, field := range fields {
		if textscan.IsHealthy(field.Value) {
			continue
		}

		matches := c.search(ctx, field.Value, 3, supplementaryThreshold, nil)
		if len(matches) == 0 {
			continue
		}

		severity := model.SeverityHigh
		for _, m := range matches {
			if ord := reference.CategoryOrdinal(m.Categories[1]); ord >= criticalOrdinal {
				severity = model.SeverityCritical
				break
			}
		}

		return &model.Finding{
			Type:     model.TypeHealthyVsDisease,
			Severity: severity,
			Description: fmt.Sprintf(
				"ПРОТИВОРЕЧИЕ: Диагноз указывает 'Здоров', но в поле '%s' обнаружены признаки заболеваний. "+
					"Найдено %d совпадений с критериями расписания болезней.",
				field.Name, len(matches)),
			SourceField:     "diagnosis_text",
			TargetField:     field.Name,
			SourceValue:     truncate(record.DiagnosisText, 200),
			TargetValue:     truncate(field.Value, 200),
			MatchedCriteria: matches,
			Recommendation:  "Требуется уточнение: актуально ли заболевание или это история болезни (вылечен).",
		}
	}
	return nil
}

// checkDiseaseVsHealthy: the diagnosis names a disease, but a supplementary
// field reads healthy.
func (c *Checker) checkDiseaseVsHealthy(_ context.Context, record *model.ExaminationRecord, fields []model.SupplementaryField) *model.Finding {
	if textscan.IsHealthy(record.DiagnosisText) {
		return nil
	}

	for _, field := range fields {
		if !textscan.IsHealthy(field.Value) {
			continue
		}
		return &model.Finding{
			Type:     model.TypeDiseaseVsHealthy,
			Severity: model.SeverityMedium,
			Description: fmt.Sprintf(
				"ПРОТИВОРЕЧИЕ: В диагнозе указано заболевание, но в поле '%s' указано, что призывник здоров. "+
					"Возможно, это контекст 'общее состояние удовлетворительное' или ошибка в диагнозе.",
				field.Name),
			SourceField:    "diagnosis_text",
			TargetField:    field.Name,
			SourceValue:    truncate(record.DiagnosisText, 200),
			TargetValue:    truncate(field.Value, 200),
			Recommendation: "Уточнить: относится ли 'здоров' к общему состоянию или врач ошибся в диагнозе.",
		}
	}
	return nil
}

// checkConflictingDiseases: a supplementary field retrieves a different,
// more severe statute article than the diagnosis itself.
func (c *Checker) checkConflictingDiseases(ctx context.Context, record *model.ExaminationRecord, fields []model.SupplementaryField) *model.Finding {
	if textscan.IsHealthy(record.DiagnosisText) {
		return nil
	}

	diagnosisMatches := c.search(ctx, record.DiagnosisText, 2, diagnosisThreshold, nil)
	if len(diagnosisMatches) == 0 {
		return nil
	}
	best := diagnosisMatches[0]
	diagnosisOrdinal := reference.CategoryOrdinal(best.Categories[1])

	for _, field := range fields {
		if textscan.IsHealthy(field.Value) {
			continue
		}

		for _, m := range c.search(ctx, field.Value, 3, supplementaryThreshold, nil) {
			if m.Article == 0 || m.Article == best.Article {
				continue
			}
			fieldOrdinal := reference.CategoryOrdinal(m.Categories[1])
			if fieldOrdinal <= diagnosisOrdinal {
				continue
			}

			severity := model.SeverityHigh
			if fieldOrdinal >= criticalOrdinal {
				severity = model.SeverityCritical
			}

			return &model.Finding{
				Type:     model.TypeDiseaseVsDisease,
				Severity: severity,
				Description: fmt.Sprintf(
					"ПРОТИВОРЕЧИЕ: В диагнозе указана статья %d (категория %s), но в поле '%s' "+
						"обнаружены признаки статьи %d (категория %s), которая серьезнее.",
					best.Article, best.Categories[1], field.Name, m.Article, m.Categories[1]),
				SourceField:     "diagnosis_text",
				TargetField:     field.Name,
				SourceValue:     truncate(record.DiagnosisText, 200),
				TargetValue:     truncate(field.Value, 200),
				MatchedCriteria: []model.CriterionMatch{best, m},
				Recommendation: fmt.Sprintf(
					"Необходимо определить основной диагноз. Возможно, статья %d должна быть приоритетной.",
					m.Article),
			}
		}
	}
	return nil
}

// checkCategoryAgainstCriteria: the best-matching criterion for the
// diagnosis expects a different category for this graph than the doctor set.
func (c *Checker) checkCategoryAgainstCriteria(ctx context.Context, record *model.ExaminationRecord, _ []model.SupplementaryField) *model.Finding {
	if textscan.IsHealthy(record.DiagnosisText) {
		return nil
	}

	matches := c.search(ctx, record.DiagnosisText, 1, categoryThreshold, nil)
	if len(matches) == 0 {
		return nil
	}
	best := matches[0]

	expected := best.Categories[record.Graph()]
	if expected == "" {
		return nil
	}

	doctor := reference.NormalizeCategory(record.DoctorCategory)
	if doctor == reference.NormalizeCategory(expected) {
		return nil
	}

	severity := model.SeverityHigh
	if reference.CategoryDistance(record.DoctorCategory, expected) >= 2 {
		severity = model.SeverityCritical
	}

	return &model.Finding{
		Type:     model.TypeCategoryMismatch,
		Severity: severity,
		Description: fmt.Sprintf(
			"НЕСООТВЕТСТВИЕ КАТЕГОРИИ: Врач поставил категорию '%s', но по статье %d, подпункт %s "+
				"для графы %d ожидается категория '%s'.",
			record.DoctorCategory, best.Article, best.Subpoint, record.Graph(), expected),
		SourceField:     "doctor_category",
		TargetField:     "handbook_category",
		SourceValue:     record.DoctorCategory,
		TargetValue:     expected,
		MatchedCriteria: []model.CriterionMatch{best},
		Recommendation: fmt.Sprintf(
			"Проверить соответствие категории расписанию болезней, статья %d, подпункт %s.",
			best.Article, best.Subpoint),
	}
}

// search wraps the retriever with the degrade-to-empty failure policy.
func (c *Checker) search(ctx context.Context, text string, topK int, threshold float64, article *int) []model.CriterionMatch {
	matches, err := c.searcher.Search(ctx, text, topK, threshold, article)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: criteria search failed: %v\n", err)
		return nil
	}
	return matches
}

// truncate limits a snapshot value to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
