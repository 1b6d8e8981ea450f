package model

// OverallStatus is the pipeline's top-level validation outcome.
type OverallStatus string

const (
	StatusValid   OverallStatus = "VALID"
	StatusWarning OverallStatus = "WARNING"
	StatusInvalid OverallStatus = "INVALID"
)

// MatchStatus classifies how the doctor's category relates to the category
// resolved from the reference table.
type MatchStatus string

const (
	MatchStatusMatch    MatchStatus = "MATCH"
	MatchStatusMismatch MatchStatus = "MISMATCH"
	// MatchStatusPartialMismatch marks borderline statute entries where one
	// subpoint legitimately maps to several categories.
	MatchStatusPartialMismatch MatchStatus = "PARTIAL_MISMATCH"
	MatchStatusReviewRequired  MatchStatus = "REVIEW_REQUIRED"
)

// StageStatus is the execution status of one pipeline stage.
type StageStatus string

const (
	StageSuccess StageStatus = "SUCCESS"
	StageWarning StageStatus = "WARNING"
	StageError   StageStatus = "ERROR"
	StageSkipped StageStatus = "SKIPPED"
)

// StageResult reports one pipeline stage's outcome.
type StageResult struct {
	Name            string         `json:"name"`
	Number          int            `json:"number"`
	Passed          bool           `json:"passed"`
	Status          StageStatus    `json:"status"`
	Details         map[string]any `json:"details,omitempty"`
	DurationSeconds float64        `json:"duration_seconds"`
}

// VerdictMetadata carries run bookkeeping the reviewing authority sees
// alongside the verdict.
type VerdictMetadata struct {
	Model                 string  `json:"model,omitempty"`
	TotalDurationSeconds  float64 `json:"total_duration_seconds"`
	Stage0DurationSeconds float64 `json:"stage_0_duration_seconds"`
	Stage1DurationSeconds float64 `json:"stage_1_duration_seconds"`
	Stage2DurationSeconds float64 `json:"stage_2_duration_seconds"`
	TokensUsed            int     `json:"tokens_used"`
	Graph                 int     `json:"graph"`
	Specialty             string  `json:"specialty,omitempty"`
}

// Verdict is the single output of a full validation run: a structured,
// explainable signal for the commission chair. The system never decides the
// final fitness category itself.
type Verdict struct {
	OverallStatus OverallStatus `json:"overall_status"`
	RiskLevel     Severity      `json:"risk_level"`

	Stage0 StageResult `json:"stage_0"`
	Stage1 StageResult `json:"stage_1"`
	Stage2 StageResult `json:"stage_2"`

	Stage0Findings []Finding `json:"stage_0_findings"`

	RecommendedArticle  *int    `json:"recommended_article,omitempty"`
	RecommendedSubpoint string  `json:"recommended_subpoint,omitempty"`
	RecommendedCategory string  `json:"recommended_category,omitempty"`
	Confidence          float64 `json:"confidence"`
	Reasoning           string  `json:"reasoning,omitempty"`

	DoctorCategory      string      `json:"doctor_category"`
	CategoryMatchStatus MatchStatus `json:"category_match_status"`

	ShouldReview    bool     `json:"should_review"`
	ReviewReasons   []string `json:"review_reasons"`
	Recommendations []string `json:"recommendations"`

	// IsHealthy is the clinical classifier's healthy flag. It is independent
	// of the keyword heuristic behind the stage-0 checks; disagreement between
	// the two is reported, not reconciled.
	IsHealthy bool `json:"is_healthy"`

	Metadata VerdictMetadata `json:"metadata"`
}

// HasCriticalFinding reports whether any stage-0 finding is CRITICAL.
func (v *Verdict) HasCriticalFinding() bool {
	for _, f := range v.Stage0Findings {
		if f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
