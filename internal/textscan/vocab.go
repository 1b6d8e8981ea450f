// Package textscan implements negation-aware keyword detection over the
// free-text fields of an examination record. Matching is substring-based on
// the lower-cased text; negation windows are measured in runes so Cyrillic
// offsets behave the same as the reference data the vocabularies were tuned
// against. The window sizes are deliberate and must not drift.
package textscan

// healthyVocabulary marks texts describing a healthy subject. Stems are used
// so Russian inflections match.
var healthyVocabulary = []string{
	"здоров",
	"практически здоров",
	"патологии не выявлено",
	"патологии не выявлены",
	"патологических изменений не выявлено",
	"без патологии",
	"без особенностей",
	"жалоб нет",
	"жалоб не предъявляет",
	"в пределах нормы",
	"в пределах возрастной нормы",
	"отклонений не выявлено",
	"годен без ограничений",
}

// pathologyVocabulary lists disease stems that veto a healthy reading unless
// negated shortly before the hit.
var pathologyVocabulary = []string{
	"болезнь",
	"болезни",
	"заболевани",
	"синдром",
	"гипертони",
	"гипотони",
	"астма",
	"бронхит",
	"пневмони",
	"диабет",
	"язва",
	"язвенн",
	"гастрит",
	"гепатит",
	"туберкул",
	"эпилепс",
	"невроз",
	"психоз",
	"порок",
	"деформац",
	"искривлен",
	"грыжа",
	"плоскостопие",
	"сколиоз",
	"анеми",
	"аритми",
	"тахикарди",
	"недостаточност",
	"миопия",
	"астигматизм",
	"дерматит",
	"экзема",
	"псориаз",
	"варикоз",
	"опухол",
	"киста",
	"перелом",
	"контузи",
}

// severeVocabulary lists conditions that are incompatible with the fully-fit
// category. Stems avoid short substrings that collide with everyday words
// (patronymics contain "вич", "брак" contains "рак").
var severeVocabulary = []string{
	"туберкулез",
	"туберкулёз",
	"злокачествен",
	"онколог",
	"карцином",
	"саркома",
	"лейкоз",
	"лимфома",
	"метастаз",
	"опухол",
	"вич-инфекц",
	"шизофрен",
	"эпилепс",
	"психоз",
	"цирроз",
	"инфаркт",
	"инсульт",
	"порок сердца",
	"сахарный диабет",
	"менингит",
	"остеомиелит",
	"гепатит b",
	"гепатит c",
	"гепатит в",
	"гепатит с",
}

// Negation marker sets. The before/after sets differ: trailing-context
// negation is phrased differently in clinical Russian ("туберкулез не
// выявлен", "исключен") than leading-context negation ("без туберкулеза").
var (
	healthyNegationBefore = []string{"не ", "нет ", "без ", "отсутств"}

	severeNegationBefore = []string{"не ", "нет ", "без ", "отсутств", "исключ"}
	severeNegationAfter  = []string{" не ", " нет", " отсутств", " исключ", " не обнаруж", " не выявл"}
)

// Negation window sizes, in runes over the lower-cased text.
const (
	healthyBeforeWindow = 20
	severeBeforeWindow  = 25
	severeAfterWindow   = 30
)
