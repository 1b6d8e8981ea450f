package model

// ContradictionType discriminates the six field-consistency checks. The wire
// values match the reviewing authority's existing reporting format.
type ContradictionType string

const (
	// TypeHealthyVsDisease: diagnosis says healthy, supplementary fields
	// describe a disease.
	TypeHealthyVsDisease ContradictionType = "TYPE_A_HEALTHY_VS_DISEASE"
	// TypeDiseaseVsHealthy: diagnosis names a disease, supplementary fields
	// say healthy.
	TypeDiseaseVsHealthy ContradictionType = "TYPE_B_DISEASE_VS_HEALTHY"
	// TypeDiseaseVsDisease: supplementary fields point to a different, more
	// severe statute article than the diagnosis.
	TypeDiseaseVsDisease ContradictionType = "TYPE_C_DISEASE_A_VS_DISEASE_B"
	// TypeCategoryMismatch: doctor's category differs from the reference
	// category for the matched criterion.
	TypeCategoryMismatch ContradictionType = "TYPE_D_CATEGORY_MISMATCH"
	// TypeLogicalError: healthy diagnosis with a category other than А.
	TypeLogicalError ContradictionType = "TYPE_E_LOGICAL_ERROR"
	// TypeObviousMismatch: severe condition in the diagnosis with category А.
	TypeObviousMismatch ContradictionType = "TYPE_F_OBVIOUS_CATEGORY_MISMATCH"
)

// Severity orders contradiction findings and doubles as the verdict risk
// level.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// severityRank backs Severity comparison; unknown values rank lowest.
var severityRank = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// AtLeast reports whether s is at least as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return severityRank[s] >= severityRank[other]
}

// Finding is one detected inconsistency between two fields of a single
// examination record. Created fresh per validation call; never persisted by
// the core.
type Finding struct {
	Type        ContradictionType `json:"type"`
	Severity    Severity          `json:"severity"`
	Description string            `json:"description"`
	SourceField string            `json:"source_field,omitempty"`
	TargetField string            `json:"target_field,omitempty"`
	SourceValue string            `json:"source_value,omitempty"`
	TargetValue string            `json:"target_value,omitempty"`
	// MatchedCriteria holds the retrieval hits that triggered the finding.
	MatchedCriteria []CriterionMatch `json:"matched_criteria,omitempty"`
	Recommendation  string           `json:"recommendation,omitempty"`
}
