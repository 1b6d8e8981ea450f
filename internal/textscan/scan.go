package textscan

import (
	"strings"
	"unicode/utf8"
)

// keywordHit locates the first occurrence of keyword in the lowered text and
// returns its rune offsets. Only the first occurrence is inspected; repeated
// mentions do not get a second chance at escaping negation.
func keywordHit(lowered string, keyword string) (start, end int, ok bool) {
	idx := strings.Index(lowered, keyword)
	if idx < 0 {
		return 0, 0, false
	}
	start = utf8.RuneCountInString(lowered[:idx])
	end = start + utf8.RuneCountInString(keyword)
	return start, end, true
}

// windowBefore returns up to window runes preceding start, clamped to the
// string bounds.
func windowBefore(runes []rune, start, window int) string {
	from := start - window
	if from < 0 {
		from = 0
	}
	return string(runes[from:start])
}

// windowAfter returns up to window runes following end, clamped to the
// string bounds.
func windowAfter(runes []rune, end, window int) string {
	to := end + window
	if to > len(runes) {
		to = len(runes)
	}
	return string(runes[end:to])
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// scanOptions parameterize a negation-aware vocabulary scan.
type scanOptions struct {
	beforeWindow  int
	afterWindow   int // 0 disables the trailing window
	beforeMarkers []string
	afterMarkers  []string
}

// firstNonNegated returns the first vocabulary keyword whose (first)
// occurrence is not negated within the configured windows.
func firstNonNegated(text string, vocab []string, opts scanOptions) (string, bool) {
	lowered := strings.ToLower(text)
	runes := []rune(lowered)

	for _, keyword := range vocab {
		start, end, ok := keywordHit(lowered, keyword)
		if !ok {
			continue
		}
		if containsAny(windowBefore(runes, start, opts.beforeWindow), opts.beforeMarkers) {
			continue
		}
		if opts.afterWindow > 0 &&
			containsAny(windowAfter(runes, end, opts.afterWindow), opts.afterMarkers) {
			continue
		}
		return keyword, true
	}
	return "", false
}

// IsHealthy reports whether the text describes a healthy subject: at least
// one healthy-vocabulary hit, and every pathology-vocabulary hit negated
// within the leading window. A text with no healthy-vocabulary hit is never
// healthy, whatever else it contains.
func IsHealthy(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	lowered := strings.ToLower(text)
	hasHealthy := false
	for _, keyword := range healthyVocabulary {
		if strings.Contains(lowered, keyword) {
			hasHealthy = true
			break
		}
	}
	if !hasHealthy {
		return false
	}

	runes := []rune(lowered)
	for _, keyword := range pathologyVocabulary {
		start, _, ok := keywordHit(lowered, keyword)
		if !ok {
			continue
		}
		if !containsAny(windowBefore(runes, start, healthyBeforeWindow), healthyNegationBefore) {
			return false
		}
	}
	return true
}

// SevereCondition scans for severe-condition keywords, discarding hits that
// are negated in either the leading or the trailing window ("туберкулез не
// выявлен" is not a finding). The first surviving hit wins.
func SevereCondition(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return firstNonNegated(text, severeVocabulary, scanOptions{
		beforeWindow:  severeBeforeWindow,
		afterWindow:   severeAfterWindow,
		beforeMarkers: severeNegationBefore,
		afterMarkers:  severeNegationAfter,
	})
}
