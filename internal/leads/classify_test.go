package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestClassifyText(t *testing.T) {
	tests := []struct {
		text string
		want Category
	}{
		{text: "Spacious Town House with garden", want: CategoryTownhouse},
		{text: "villa and townhouse cluster", want: CategoryTownhouse},
		{text: "Private VILLA with pool", want: CategoryVilla},
		{text: "Studio near the metro", want: CategoryApartment},
		{text: "Penthouse with sea view", want: CategoryApartment},
		{text: "Commercial plot", want: CategoryNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyText(tt.text), tt.text)
	}
}

func TestDecideCategory(t *testing.T) {
	tests := []struct {
		name     string
		signals  Signals
		category Category
		stage    Stage
	}{
		{
			name:     "land forces villa over apartment keyword",
			signals:  Signals{HasLand: boolPtr(true), Searchable: "apartment with land"},
			category: CategoryVilla,
			stage:    StageStructural,
		},
		{
			name:     "land with townhouse type",
			signals:  Signals{HasLand: boolPtr(true), PropertyType: "Town House"},
			category: CategoryTownhouse,
			stage:    StageStructural,
		},
		{
			name:     "no land falls back to keywords",
			signals:  Signals{HasLand: boolPtr(false), Searchable: "duplex in marina"},
			category: CategoryApartment,
			stage:    StageKeyword,
		},
		{
			name:     "missing property line falls back to keywords",
			signals:  Signals{Searchable: "villa in arabian ranches"},
			category: CategoryVilla,
			stage:    StageKeyword,
		},
		{
			name:    "inconclusive",
			signals: Signals{Searchable: "land plot"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, stage := DecideCategory(tt.signals)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.stage, stage)
		})
	}
}
