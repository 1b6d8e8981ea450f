package textscan

import "testing"

func TestIsHealthy(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"plain healthy", "Здоров", true},
		{"healthy with negated pathology", "Здоров, патологии не выявлены", true},
		{"practically healthy", "Практически здоров, жалоб не предъявляет", true},
		{"within norm", "Все показатели в пределах нормы", true},
		{"no complaints", "Жалоб нет, развитие соответствует возрасту", true},
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"disease only", "Гипертоническая болезнь I стадии", false},
		{"healthy word plus live disease", "Здоров, но выявлена бронхиальная астма", false},
		{"negated disease near healthy", "Здоров, без признаков гипертонии", true},
		{"no healthy vocabulary at all", "Состояние удовлетворительное", false},
		{"uppercase healthy", "ЗДОРОВ, ПАТОЛОГИИ НЕ ВЫЯВЛЕНО", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHealthy(tt.text); got != tt.want {
				t.Errorf("IsHealthy(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsHealthyNegationWindow(t *testing.T) {
	// The negation must sit within 20 runes before the pathology keyword.
	if !IsHealthy("Здоров, без диабета") {
		t.Error("negation right before the keyword must count")
	}
	// A negation far from the keyword does not reach it.
	if IsHealthy("Здоров, но нет сомнений в том, что имеется сахарный диабет у пациента") {
		t.Error("negation outside the window must not count")
	}
}

func TestSevereCondition(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantFound   bool
		wantKeyword string
	}{
		{"tuberculosis", "Инфильтративный туберкулез верхней доли", true, "туберкулез"},
		{"tuberculosis yo", "Очаговый туберкулёз лёгких", true, "туберкулёз"},
		{"oncology", "Подозрение на злокачественное новообразование", true, "злокачествен"},
		{"epilepsy", "Эпилепсия с генерализованными приступами", true, "эпилепс"},
		{"negated before", "Данных за туберкулез нет, без патологии", false, ""},
		{"negated after", "Туберкулез не выявлен при обследовании", false, ""},
		{"ruled out after", "Онкология исключена по результатам биопсии", false, ""},
		{"clean", "Здоров, патологии не выявлены", false, ""},
		{"empty", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyword, found := SevereCondition(tt.text)
			if found != tt.wantFound {
				t.Fatalf("SevereCondition(%q) found = %v, want %v", tt.text, found, tt.wantFound)
			}
			if found && keyword != tt.wantKeyword {
				t.Errorf("keyword = %q, want %q", keyword, tt.wantKeyword)
			}
		})
	}
}

func TestSevereConditionFirstNonNegatedWins(t *testing.T) {
	// The first keyword is negated, the second is not.
	keyword, found := SevereCondition("Туберкулез не выявлен, однако обнаружен цирроз печени")
	if !found {
		t.Fatal("expected the non-negated condition to be reported")
	}
	if keyword != "цирроз" {
		t.Errorf("keyword = %q, want цирроз", keyword)
	}
}

func TestSevereConditionWindowIsRuneBased(t *testing.T) {
	// Cyrillic text is two bytes per rune; windows must count runes, not
	// bytes, or the negation would land outside the byte window.
	if _, found := SevereCondition("признаков опухоли головного мозга нет"); found {
		t.Error("negation 'нет' after the keyword must be seen in the rune window")
	}
}
