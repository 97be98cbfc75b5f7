package leads

import "strings"

// keywordRules are checked in priority order; the first category with a
// matching keyword wins.
var keywordRules = []struct {
	category Category
	keywords []string
}{
	{CategoryTownhouse, []string{"townhouse", "town house"}},
	{CategoryVilla, []string{"villa"}},
	{CategoryApartment, []string{"apartment", "flat", "studio", "penthouse", "duplex"}},
}

// ClassifyText returns the first category whose keywords appear in text.
func ClassifyText(text string) Category {
	t := strings.ToLower(text)
	for _, rule := range keywordRules {
		if containsAny(t, rule.keywords) {
			return rule.category
		}
	}
	return CategoryNone
}

// Signals is the evidence the local classification stages look at.
type Signals struct {
	HasLand      *bool
	PropertyType string
	// Searchable is title + subject + body text.
	Searchable string
}

type stage struct {
	name   Stage
	decide func(Signals) Category
}

// localStages run in order until one yields a category. The structural
// stage always decides when the land signal is present, so keywords never
// override it.
var localStages = []stage{
	{name: StageStructural, decide: structuralCategory},
	{name: StageKeyword, decide: func(s Signals) Category { return ClassifyText(s.Searchable) }},
}

// DecideCategory runs the local stages and reports which one decided.
// Both results are empty when no stage matched; the caller may then
// escalate to the remote stage.
func DecideCategory(s Signals) (Category, Stage) {
	for _, st := range localStages {
		if category := st.decide(s); category != CategoryNone {
			return category, st.name
		}
	}
	return CategoryNone, StageNone
}

func structuralCategory(s Signals) Category {
	if s.HasLand == nil || !*s.HasLand {
		return CategoryNone
	}
	if containsAny(strings.ToLower(s.PropertyType), keywordRules[0].keywords) {
		return CategoryTownhouse
	}
	return CategoryVilla
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
