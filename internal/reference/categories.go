// Package reference holds the statutory criteria table and the category
// alphabet it maps conditions onto.
package reference

import "strings"

// categoryOrdinal orders fitness categories from most fit to least fit.
// This is business data, not an enum: new codes are added here without
// touching comparison logic. В-ИНД shares В's rank; the Latin spelling of А
// appears in upstream data and is treated as the Cyrillic code.
var categoryOrdinal = map[string]int{
	"А":     1,
	"Б":     2,
	"В":     3,
	"В-ИНД": 3,
	"Г":     4,
	"Д":     5,
	"Е":     6,
	"НГ":    7,
}

// CategoryFullyFit is the code for "fit without restrictions".
const CategoryFullyFit = "А"

// NormalizeCategory upper-cases and trims a category code and folds the
// Latin "A" (common in imported records) into the Cyrillic "А".
func NormalizeCategory(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "A" {
		return CategoryFullyFit
	}
	return c
}

// CategoryOrdinal returns the severity rank of a category code, 0 for
// unknown codes. Higher means less fit for service.
func CategoryOrdinal(code string) int {
	return categoryOrdinal[NormalizeCategory(code)]
}

// IsFullyFit reports whether the code means fit without restrictions.
func IsFullyFit(code string) bool {
	return NormalizeCategory(code) == CategoryFullyFit
}

// CategoryDistance returns the absolute ordinal distance between two codes.
// Unknown codes rank 0, so a distance against an unknown code is inflated
// rather than hidden.
func CategoryDistance(a, b string) int {
	d := CategoryOrdinal(a) - CategoryOrdinal(b)
	if d < 0 {
		d = -d
	}
	return d
}
