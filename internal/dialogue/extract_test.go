package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCategory(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      string
		wantOK    bool
	}{
		{"house is domestic", "it's for my house", CategoryDomestic, true},
		{"flat is domestic", "a two bed flat", CategoryDomestic, true},
		{"office is commercial", "our office needs a clean", CategoryCommercial, true},
		{"restaurant is commercial", "it's a restaurant kitchen", CategoryCommercial, true},
		{"both sides stays open", "my home office", "", false},
		{"no signal stays open", "i need a clean", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCategory(tt.utterance)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractServiceType(t *testing.T) {
	tests := []struct {
		name      string
		category  string
		utterance string
		want      string
		wantOK    bool
	}{
		{"moving out", CategoryDomestic, "we're moving out at the end of the month", ServiceEndOfTenancy, true},
		{"end of lease", CategoryDomestic, "it's an end of lease clean", ServiceEndOfTenancy, true},
		{"deep clean", CategoryDomestic, "a proper deep clean please", ServiceDeepClean, true},
		{"spring clean maps to deep", CategoryDomestic, "a good spring clean", ServiceDeepClean, true},
		{"after builders", CategoryDomestic, "we've just had builders in, post renovation", ServicePostConstruction, true},
		{"disinfection", CategoryDomestic, "we need it disinfected", ServiceDisinfection, true},
		{"regular weekly", CategoryDomestic, "just a regular weekly clean", ServiceRegularDomestic, true},
		{"tenancy beats regular", CategoryDomestic, "a regular clean before the end of tenancy", ServiceEndOfTenancy, true},
		{"no match", CategoryDomestic, "the usual sort of thing", "", false},

		{"commercial one-off deep", CategoryCommercial, "a one-off deep clean of the office", ServiceCommercialDeepClean, true},
		{"commercial contract", CategoryCommercial, "ongoing contract cleaning", ServiceRegularCommercial, true},
		{"commercial post build", CategoryCommercial, "post construction tidy up", ServiceCommercialPostBuild, true},
		{"commercial disinfection", CategoryCommercial, "full antiviral sanitisation", ServiceCommercialDisinfection, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractServiceType(tt.category, tt.utterance)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPropertyType(t *testing.T) {
	tests := []struct {
		name         string
		category     string
		utterance    string
		want         string
		wantHighRisk bool
		wantOK       bool
	}{
		{"semi detached", CategoryDomestic, "it's a semi detached house", PropertySemiDetached, true, true},
		{"terraced", CategoryDomestic, "a terraced house", PropertyTerraced, true, true},
		{"detached", CategoryDomestic, "a detached place", PropertyDetached, true, true},
		{"studio", CategoryDomestic, "just a studio", PropertyStudio, true, true},
		{"bungalow", CategoryDomestic, "mum's bungalow", PropertyBungalow, true, true},
		{"maisonette", CategoryDomestic, "a maisonette", PropertyMaisonette, true, true},
		{"flat is not high risk", CategoryDomestic, "a flat on the third floor", PropertyFlat, false, true},
		{"bare house never resolves", CategoryDomestic, "it's a house", "", false, false},

		{"office", CategoryCommercial, "a small office", PropertyOffice, false, true},
		{"shop", CategoryCommercial, "our retail shop", PropertyRetail, false, true},
		{"warehouse", CategoryCommercial, "an industrial unit", PropertyWarehouse, false, true},
		{"clinic", CategoryCommercial, "a dental surgery", PropertyMedical, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, highRisk, ok := ExtractPropertyType(tt.category, tt.utterance)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantHighRisk, highRisk)
		})
	}
}

func TestExtractJobType(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      string
		wantOK    bool
	}{
		{"one off", "just a one off", JobTypeOneTime, true},
		{"single visit", "a single visit should do it", JobTypeOneTime, true},
		{"ongoing", "something ongoing", JobTypeRegular, true},
		{"every week", "every week if possible", JobTypeRegular, true},
		{"mixed stays open", "once now, maybe regular later", "", false},
		{"no signal", "whatever works", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJobType(tt.utterance)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFrequency(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      float64
		wantOK    bool
	}{
		{"weekly", "weekly please", 1, true},
		{"once a week", "once a week", 1, true},
		{"twice a week", "twice a week", 2, true},
		{"three times", "three times a week", 3, true},
		{"every other week", "every other week", 0.5, true},
		{"fortnightly", "fortnightly", 0.5, true},
		{"biweekly", "bi-weekly would be great", 0.5, true},
		{"every weekday", "every weekday", 5, true},
		{"monday to friday", "monday to friday", 5, true},
		{"daily", "daily", 7, true},
		{"every day", "every day including weekends", 7, true},
		{"once a month", "once a month", 0.25, true},
		{"monthly", "monthly is enough", 0.25, true},
		{"numeric per week", "4 times per week", 4, true},

		// ambiguous words never resolve
		{"regularly", "regularly", 0, false},
		{"occasionally", "occasionally, when needed", 0, false},
		{"flexible", "we're flexible", 0, false},
		{"no signal", "hmm", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractFrequency(tt.utterance)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractExtras(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      []string
	}{
		{"single extra", "could you do the oven as well", []string{"Oven cleaning"}},
		{"multiple extras", "the oven and the windows please", []string{"Oven cleaning", "Internal windows"}},
		{"sofa maps to upholstery", "and the sofa needs doing", []string{"Upholstery cleaning"}},
		{"deduplicated", "the fridge, yes the fridge", []string{"Fridge cleaning"}},
		{"off-list ignored", "and wash the dog", nil},
		{"nothing", "no thanks", nil},
		{"negated mention ignored", "no oven thanks", nil},
		{"negation scoped to its mention", "no oven but do the windows", []string{"Internal windows"}},
		{"contracted negation", "don't do the fridge", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractExtras(tt.utterance))
		})
	}
}

func TestExtractCount(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      int
		wantOK    bool
	}{
		{"digit", "we have 4", 4, true},
		{"word", "three of them", 3, true},
		{"zero word", "zero", 0, true},
		{"none", "none", 0, true},
		{"no means zero", "no there aren't", 0, true},
		{"couple", "a couple", 2, true},
		{"no number", "a few i think", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCount(tt.utterance)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractHours(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      float64
		wantOK    bool
	}{
		{"n hours", "about 3 hours", 3, true},
		{"fractional", "3.5 hours", 3.5, true},
		{"hrs", "2 hrs", 2, true},
		{"half a day", "half a day", 4, true},
		{"full day", "a full day", 8, true},
		{"bare word number", "four", 4, true},
		{"nothing", "not sure really", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractHours(tt.utterance)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractYesNo(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      bool
		wantOK    bool
	}{
		{"yes", "yes please", true, true},
		{"thats right", "yeah that's right", true, true},
		{"go ahead", "go ahead", true, true},
		{"nope", "nope", false, true},
		{"no thanks", "no thanks", false, true},
		{"know does not mean no", "i know, sounds good", true, true},
		{"mixed stays open", "not sure", false, false},
		{"no signal", "maybe", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractYesNo(tt.utterance)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractAreasScope(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      string
		wantOK    bool
	}{
		{"just the kitchen", "just the kitchen and bathrooms", "kitchen and bathrooms", true},
		{"only with please", "only the oven please", "oven", true},
		{"no restriction", "the whole place", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractAreasScope(tt.utterance)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
