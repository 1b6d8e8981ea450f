package pipeline

import (
	"fmt"

	"github.com/emedosmotr/vvk-validator/internal/adminresolve"
	"github.com/emedosmotr/vvk-validator/internal/clinical"
	"github.com/emedosmotr/vvk-validator/internal/model"
	"github.com/emedosmotr/vvk-validator/internal/reference"
)

// Aggregator reconciles the three stage outputs into the final verdict
// fields.
type Aggregator struct {
	borderline []BorderlineCase
}

// NewAggregator builds an aggregator with the given borderline table. A nil
// table falls back to the built-in default.
func NewAggregator(borderline []BorderlineCase) *Aggregator {
	if borderline == nil {
		borderline = DefaultBorderlineCases()
	}
	return &Aggregator{borderline: borderline}
}

// Aggregate fills the decision fields of the verdict from the stage
// outputs. classification may be nil when Stage 1 failed; classifyErr then
// carries the failure.
func (a *Aggregator) Aggregate(
	record *model.ExaminationRecord,
	findings []model.Finding,
	classification *clinical.Classification,
	classifyErr error,
	resolution adminresolve.Resolution,
	verdict *model.Verdict,
) {
	healthy := classification != nil && classification.IsHealthy

	verdict.Stage0Findings = findings
	verdict.DoctorCategory = record.DoctorCategory
	verdict.IsHealthy = healthy
	verdict.RecommendedArticle = resolution.Article
	verdict.RecommendedSubpoint = resolution.Subpoint
	verdict.RecommendedCategory = resolution.Category
	if classification != nil {
		verdict.Confidence = classification.Confidence
		verdict.Reasoning = classification.Reasoning
	}

	verdict.CategoryMatchStatus = a.matchStatus(record, healthy, resolution)
	verdict.OverallStatus, verdict.RiskLevel = statusAndRisk(
		verdict.CategoryMatchStatus, findings, verdict.Confidence, healthy)

	verdict.ReviewReasons = reviewReasons(verdict, classification, classifyErr, resolution, findings)
	verdict.Recommendations = recommendations(findings)
	verdict.ShouldReview = verdict.OverallStatus != model.StatusValid ||
		len(verdict.ReviewReasons) > 0 ||
		verdict.RiskLevel.AtLeast(model.SeverityHigh)
}

// matchStatus classifies the doctor's category against the resolved one.
// Rules apply in order; the first that decides wins.
func (a *Aggregator) matchStatus(record *model.ExaminationRecord, healthy bool, resolution adminresolve.Resolution) model.MatchStatus {
	doctor := reference.NormalizeCategory(record.DoctorCategory)

	if resolution.Category == "" {
		if doctor == reference.CategoryFullyFit && resolution.Article == nil && resolution.Subpoint == "" {
			return model.MatchStatusMatch
		}
		return model.MatchStatusReviewRequired
	}

	if healthy {
		if doctor == reference.CategoryFullyFit {
			return model.MatchStatusMatch
		}
		return model.MatchStatusMismatch
	}

	if doctor == reference.NormalizeCategory(resolution.Category) {
		return model.MatchStatusMatch
	}

	if resolution.Article != nil &&
		matchBorderline(a.borderline, *resolution.Article, resolution.Subpoint, record.DiagnosisText) {
		return model.MatchStatusPartialMismatch
	}

	return model.MatchStatusMismatch
}

// statusAndRisk applies the overall status ladder, first match wins.
func statusAndRisk(match model.MatchStatus, findings []model.Finding, confidence float64, healthy bool) (model.OverallStatus, model.Severity) {
	hasCritical := hasSeverity(findings, model.SeverityCritical)
	hasHigh := hasSeverity(findings, model.SeverityHigh)

	switch {
	case match == model.MatchStatusMatch && len(findings) == 0:
		return model.StatusValid, model.SeverityLow
	case hasCritical:
		return model.StatusInvalid, model.SeverityCritical
	case match == model.MatchStatusMismatch && hasHigh:
		return model.StatusInvalid, model.SeverityHigh
	case match == model.MatchStatusMismatch:
		return model.StatusWarning, model.SeverityHigh
	case match == model.MatchStatusPartialMismatch:
		return model.StatusWarning, model.SeverityMedium
	case len(findings) > 0:
		if hasHigh {
			return model.StatusWarning, model.SeverityHigh
		}
		return model.StatusWarning, model.SeverityMedium
	case confidence < clinical.PassConfidence && !healthy:
		return model.StatusWarning, model.SeverityMedium
	case match == model.MatchStatusReviewRequired:
		return model.StatusWarning, model.SeverityMedium
	case confidence >= 0.7 || healthy:
		return model.StatusValid, model.SeverityLow
	default:
		return model.StatusValid, model.SeverityMedium
	}
}

func reviewReasons(
	verdict *model.Verdict,
	classification *clinical.Classification,
	classifyErr error,
	resolution adminresolve.Resolution,
	findings []model.Finding,
) []string {
	var reasons []string

	if classifyErr != nil {
		reasons = append(reasons, fmt.Sprintf("Ошибка классификации диагноза: %v", classifyErr))
	} else if classification != nil && !classification.Passed() {
		reasons = append(reasons, fmt.Sprintf(
			"Низкая уверенность модели в определении статьи (%.2f)", classification.Confidence))
	}

	if resolution.Status == model.StageError && resolution.Reason != "" {
		reasons = append(reasons, resolution.Reason)
	}

	switch verdict.CategoryMatchStatus {
	case model.MatchStatusMismatch:
		if verdict.RecommendedCategory != "" {
			reasons = append(reasons, fmt.Sprintf(
				"Категория врача '%s' не совпадает с ожидаемой '%s'",
				verdict.DoctorCategory, verdict.RecommendedCategory))
		}
	case model.MatchStatusPartialMismatch:
		reasons = append(reasons,
			"Пограничный случай: подпункт допускает несколько категорий, требуется экспертная оценка")
	case model.MatchStatusReviewRequired:
		if resolution.Status != model.StageError {
			reasons = append(reasons,
				"Ожидаемая категория не определена, требуется ручная проверка")
		}
	}

	for _, f := range findings {
		reasons = append(reasons, f.Description)
	}
	return reasons
}

// recommendations collects distinct recommendations from the findings,
// preserving order.
func recommendations(findings []model.Finding) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range findings {
		if f.Recommendation == "" || seen[f.Recommendation] {
			continue
		}
		seen[f.Recommendation] = true
		out = append(out, f.Recommendation)
	}
	return out
}

func hasSeverity(findings []model.Finding, severity model.Severity) bool {
	for _, f := range findings {
		if f.Severity == severity {
			return true
		}
	}
	return false
}
