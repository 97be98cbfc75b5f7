package leads

import "strings"

// Alias maps an informal spelling to a canonical vocabulary entry.
type Alias struct {
	Match     string
	Canonical string
}

// Vocabulary holds the closed reference lists the matchers canonicalize
// against. Values are read-only once constructed.
type Vocabulary struct {
	Emirates       []string
	EmirateAliases []Alias
	Developers     []string
}

// DefaultVocabulary returns the UAE emirates and tracked developer brands.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Emirates: []string{
			"Abu Dhabi",
			"Dubai",
			"Sharjah",
			"Ajman",
			"Ras Al Khaimah",
			"Umm Al Quwain",
			"Fujairah",
		},
		EmirateAliases: []Alias{
			{Match: "ras al khaima", Canonical: "Ras Al Khaimah"},
			{Match: "rak", Canonical: "Ras Al Khaimah"},
		},
		Developers: []string{
			"Emaar",
			"Damac",
			"Binghatti",
			"Ora Developers",
			"Ora Properties",
			"Reportage",
			"Danube",
			"Nakheel",
			"Azizi",
			"Samana",
			"Sobha",
			"Dubai South",
		},
	}
}

// MatchEmirate returns the canonical emirate mentioned in text. Aliases are
// checked before the canonical names; the first hit wins.
func (v Vocabulary) MatchEmirate(text string) (string, bool) {
	t := strings.ToLower(text)
	for _, alias := range v.EmirateAliases {
		if strings.Contains(t, strings.ToLower(alias.Match)) {
			return alias.Canonical, true
		}
	}
	return firstContained(t, v.Emirates)
}

// MatchDeveloper returns the first known developer mentioned in text.
func (v Vocabulary) MatchDeveloper(text string) (string, bool) {
	return firstContained(strings.ToLower(text), v.Developers)
}

func firstContained(lowered string, vocabulary []string) (string, bool) {
	for _, entry := range vocabulary {
		if strings.Contains(lowered, strings.ToLower(entry)) {
			return entry, true
		}
	}
	return "", false
}
