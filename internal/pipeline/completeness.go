package pipeline

import (
	"strings"

	"github.com/emedosmotr/vvk-validator/internal/model"
)

// RequiredSpecialties is the commission roster every subject must pass.
var RequiredSpecialties = []string{
	"терапевт",
	"хирург",
	"невролог",
	"психиатр",
	"офтальмолог",
	"оториноларинголог",
	"стоматолог",
}

// CompletenessReport lists what an examination set is missing.
type CompletenessReport struct {
	Complete           bool     `json:"complete"`
	MissingSpecialties []string `json:"missing_specialties,omitempty"`
	EmptyDiagnoses     []string `json:"empty_diagnoses,omitempty"`
	MissingCategories  []string `json:"missing_categories,omitempty"`
}

// CheckCompleteness verifies that a subject's examination set covers the
// required roster and that each record carries a diagnosis and a category.
// Specialty comparison is case-insensitive on the trimmed value.
func CheckCompleteness(records []model.ExaminationRecord) CompletenessReport {
	report := CompletenessReport{}
	seen := make(map[string]bool)

	for _, r := range records {
		specialty := strings.ToLower(strings.TrimSpace(r.Specialty))
		if specialty != "" {
			seen[specialty] = true
		}
		if strings.TrimSpace(r.DiagnosisText) == "" {
			report.EmptyDiagnoses = append(report.EmptyDiagnoses, r.Specialty)
		}
		if strings.TrimSpace(r.DoctorCategory) == "" {
			report.MissingCategories = append(report.MissingCategories, r.Specialty)
		}
	}

	for _, required := range RequiredSpecialties {
		if !seen[required] {
			report.MissingSpecialties = append(report.MissingSpecialties, required)
		}
	}

	report.Complete = len(report.MissingSpecialties) == 0 &&
		len(report.EmptyDiagnoses) == 0 &&
		len(report.MissingCategories) == 0
	return report
}
