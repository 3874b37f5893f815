package domain

// Language is a target language a candidate can apply for.
type Language string

const (
	LanguageEnglish Language = "English"
	LanguageGerman  Language = "German"
	LanguageSpanish Language = "Spanish"
	LanguageFrench  Language = "French"
	LanguageItalian Language = "Italian"
)

// Languages is the fixed set offered to the candidate, in display order.
var Languages = []Language{
	LanguageEnglish,
	LanguageGerman,
	LanguageSpanish,
	LanguageFrench,
	LanguageItalian,
}

// ParseLanguage returns the language whose label matches s exactly.
func ParseLanguage(s string) (Language, bool) {
	for _, l := range Languages {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}
