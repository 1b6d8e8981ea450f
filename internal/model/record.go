package model

// ExaminationRecord holds one specialist's findings for one conscript.
// The record is owned by the caller; the validation pipeline never mutates it.
type ExaminationRecord struct {
	DiagnosisText  string `json:"diagnosis_text" yaml:"diagnosis_text"`
	DoctorCategory string `json:"doctor_category" yaml:"doctor_category"`
	Specialty      string `json:"specialty" yaml:"specialty"`

	// Supplementary free-text fields checked for internal consistency.
	Anamnesis              string `json:"anamnesis,omitempty" yaml:"anamnesis,omitempty"`
	Complaints             string `json:"complaints,omitempty" yaml:"complaints,omitempty"`
	ObjectiveData          string `json:"objective_data,omitempty" yaml:"objective_data,omitempty"`
	SpecialResearchResults string `json:"special_research_results,omitempty" yaml:"special_research_results,omitempty"`
	DoctorNotes            string `json:"doctor_notes,omitempty" yaml:"doctor_notes,omitempty"`

	// ConclusionText is the full narrative conclusion; when present it is
	// preferred over DiagnosisText for clinical classification.
	ConclusionText string `json:"conclusion_text,omitempty" yaml:"conclusion_text,omitempty"`

	ICD10Codes []string `json:"icd10_codes,omitempty" yaml:"icd10_codes,omitempty"`

	// ArticleHint/SubpointHint carry the statute reference the doctor wrote
	// on the examination act, if any.
	ArticleHint  *int   `json:"article_hint,omitempty" yaml:"article_hint,omitempty"`
	SubpointHint string `json:"subpoint_hint,omitempty" yaml:"subpoint_hint,omitempty"`

	// ConscriptionGraph selects which of the four category columns applies
	// (1 conscript, 2 cadet, 3 contract, 4 special forces).
	ConscriptionGraph int `json:"conscription_graph" yaml:"conscription_graph"`
}

// SupplementaryField pairs a field name with its free-text value.
type SupplementaryField struct {
	Name  string
	Value string
}

// SupplementaryFields returns the optional narrative fields in a stable order.
// Callers filter for minimum length; empty fields are included here.
func (r *ExaminationRecord) SupplementaryFields() []SupplementaryField {
	return []SupplementaryField{
		{Name: "anamnesis", Value: r.Anamnesis},
		{Name: "complaints", Value: r.Complaints},
		{Name: "objective_data", Value: r.ObjectiveData},
		{Name: "special_research_results", Value: r.SpecialResearchResults},
		{Name: "doctor_notes", Value: r.DoctorNotes},
	}
}

// Graph returns the conscription graph clamped to the valid 1-4 range,
// defaulting to 1 for unset records.
func (r *ExaminationRecord) Graph() int {
	if r.ConscriptionGraph < 1 || r.ConscriptionGraph > 4 {
		return 1
	}
	return r.ConscriptionGraph
}
