package pipeline

import "strings"

// BorderlineCase marks a statute entry whose subpoint legitimately maps to
// several categories depending on clinical context the lookup cannot see.
// A category discrepancy on such an entry is softened to a partial mismatch
// when any keyword appears in the diagnosis text.
//
// The table is configuration data, not logic: commission experts are
// expected to correct its boundaries over time.
type BorderlineCase struct {
	Article  int      `json:"article" yaml:"article"`
	Subpoint string   `json:"subpoint" yaml:"subpoint"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// DefaultBorderlineCases returns the built-in table.
func DefaultBorderlineCases() []BorderlineCase {
	return []BorderlineCase{
		{
			Article:  2,
			Subpoint: "3",
			Keywords: []string{
				"туберкулез", "туберкулёз", "остаточн", "посттуберкулезн",
				"излечен", "вылечен", "после лечения",
			},
		},
		{
			Article:  2,
			Subpoint: "4",
			Keywords: []string{"мал", "остаточн", "единичн", "очаг", "петрификат"},
		},
		{
			Article:  1,
			Subpoint: "2",
			Keywords: []string{"после", "перенес", "гепатит", "тиф"},
		},
	}
}

// matchBorderline reports whether the (article, subpoint, diagnosis) triple
// hits the table.
func matchBorderline(cases []BorderlineCase, article int, subpoint, diagnosisText string) bool {
	text := strings.ToLower(diagnosisText)
	for _, c := range cases {
		if c.Article != article || c.Subpoint != subpoint {
			continue
		}
		for _, kw := range c.Keywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
	}
	return false
}
