package dialogue

import (
	"regexp"
	"strconv"
	"strings"
)

// Every extractor in this file is a pure function from utterance text to a
// value (or none). They hold no call state; the engine decides what to do
// with their results.

// ---------- category ----------

var domesticSignals = []string{
	"domestic", "house", "home", "flat", "apartment", "bungalow",
	"maisonette", "my place", "bedroom", "residential",
}

var commercialSignals = []string{
	"commercial", "office", "shop", "retail", "restaurant", "cafe",
	"warehouse", "business", "premises", "clinic", "school", "workplace",
	"pub", "hotel", "gym",
}

// ExtractCategory classifies an utterance as domestic or commercial. An
// utterance that signals both sides (or neither) stays unresolved; the
// engine treats that as a no-match and asks again.
func ExtractCategory(utterance string) (string, bool) {
	text := strings.ToLower(utterance)
	domestic := containsAny(text, domesticSignals)
	commercial := containsAny(text, commercialSignals)
	switch {
	case domestic && !commercial:
		return CategoryDomestic, true
	case commercial && !domestic:
		return CategoryCommercial, true
	default:
		return "", false
	}
}

// ---------- service type ----------

type serviceRule struct {
	// all keywords must appear; any one of anyOf is enough on its own.
	all   []string
	anyOf []string
	value string
}

// Ordered rules: first match wins, so specific services sit above the
// recurring-cleaning catch-all.
var domesticServiceRules = []serviceRule{
	{anyOf: []string{"tenancy", "move out", "moving out", "end of lease", "vacate"}, value: ServiceEndOfTenancy},
	{all: []string{"post"}, anyOf: []string{"construction", "builder", "build", "renovation"}, value: ServicePostConstruction},
	{anyOf: []string{"after the builders", "builders clean"}, value: ServicePostConstruction},
	{anyOf: []string{"disinfect", "sanitis", "sanitiz", "antiviral"}, value: ServiceDisinfection},
	{anyOf: []string{"deep", "spring clean", "top to bottom", "thorough"}, value: ServiceDeepClean},
	{anyOf: []string{"regular", "weekly", "fortnightly", "recurring", "ongoing", "every week", "standard clean"}, value: ServiceRegularDomestic},
}

var commercialServiceRules = []serviceRule{
	{all: []string{"post"}, anyOf: []string{"construction", "builder", "build", "renovation"}, value: ServiceCommercialPostBuild},
	{anyOf: []string{"after the builders", "builders clean"}, value: ServiceCommercialPostBuild},
	{anyOf: []string{"disinfect", "sanitis", "sanitiz", "antiviral"}, value: ServiceCommercialDisinfection},
	{anyOf: []string{"deep", "one off", "one-off", "spring clean", "thorough"}, value: ServiceCommercialDeepClean},
	{anyOf: []string{"regular", "weekly", "daily", "recurring", "ongoing", "contract"}, value: ServiceRegularCommercial},
}

// ExtractServiceType normalizes an utterance onto the fixed service
// vocabulary for the given category. No match leaves the slot empty;
// the raw words are never stored.
func ExtractServiceType(category, utterance string) (string, bool) {
	text := strings.ToLower(utterance)
	rules := domesticServiceRules
	if category == CategoryCommercial {
		rules = commercialServiceRules
	}
	for _, r := range rules {
		if matchesRule(text, r) {
			return r.value, true
		}
	}
	return "", false
}

func matchesRule(text string, r serviceRule) bool {
	for _, kw := range r.all {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	if len(r.anyOf) == 0 {
		return len(r.all) > 0
	}
	return containsAny(text, r.anyOf)
}

// ---------- property type ----------

// Normalized domestic property vocabulary.
const (
	PropertyFlat         = "Flat or apartment"
	PropertyStudio       = "Studio flat"
	PropertyDetached     = "Detached house"
	PropertySemiDetached = "Semi-detached house"
	PropertyTerraced     = "Terraced house"
	PropertyBungalow     = "Bungalow"
	PropertyMaisonette   = "Maisonette"
)

// Normalized commercial property vocabulary.
const (
	PropertyOffice      = "Office"
	PropertyRetail      = "Retail or shop"
	PropertyRestaurant  = "Restaurant or cafe"
	PropertyWarehouse   = "Warehouse or industrial unit"
	PropertyMedical     = "Medical or clinical site"
	PropertySchool      = "School or education site"
	PropertyHospitality = "Hospitality venue"
)

type propertyRule struct {
	keywords []string
	value    string
	// highRisk marks phrases speech recognition routinely garbles; the
	// engine forces a yes/no confirmation before accepting them.
	highRisk bool
}

var domesticPropertyRules = []propertyRule{
	{keywords: []string{"semi detached", "semi-detached", "semi"}, value: PropertySemiDetached, highRisk: true},
	{keywords: []string{"terraced", "terrace", "end of terrace"}, value: PropertyTerraced, highRisk: true},
	{keywords: []string{"maisonette"}, value: PropertyMaisonette, highRisk: true},
	{keywords: []string{"studio"}, value: PropertyStudio, highRisk: true},
	{keywords: []string{"bungalow"}, value: PropertyBungalow, highRisk: true},
	{keywords: []string{"detached"}, value: PropertyDetached, highRisk: true},
	{keywords: []string{"flat", "apartment"}, value: PropertyFlat},
}

var commercialPropertyRules = []propertyRule{
	{keywords: []string{"office"}, value: PropertyOffice},
	{keywords: []string{"shop", "retail", "store"}, value: PropertyRetail},
	{keywords: []string{"restaurant", "cafe", "coffee shop", "kitchen premises"}, value: PropertyRestaurant},
	{keywords: []string{"warehouse", "industrial", "factory", "unit"}, value: PropertyWarehouse},
	{keywords: []string{"clinic", "surgery", "medical", "dental"}, value: PropertyMedical},
	{keywords: []string{"school", "nursery", "college", "education"}, value: PropertySchool},
	{keywords: []string{"pub", "hotel", "bar", "venue", "hospitality", "gym"}, value: PropertyHospitality},
}

// ExtractPropertyType normalizes an utterance onto the property vocabulary
// for the category. highRisk is true when the matched phrase is on the
// likely-misheard list and needs an explicit confirmation turn. A bare
// "house" never resolves: it must reach a specific subtype.
func ExtractPropertyType(category, utterance string) (value string, highRisk bool, ok bool) {
	text := strings.ToLower(utterance)
	rules := domesticPropertyRules
	if category == CategoryCommercial {
		rules = commercialPropertyRules
	}
	for _, r := range rules {
		if containsAny(text, r.keywords) {
			return r.value, r.highRisk, true
		}
	}
	return "", false, false
}

// ---------- job type ----------

var (
	oneTimeSignals = []string{"one off", "one-off", "one time", "one-time", "once", "just the one", "single visit"}
	regularSignals = []string{"ongoing", "regular", "recurring", "weekly", "fortnightly", "monthly", "every week", "every month", "repeat"}
)

// ExtractJobType classifies the job as one-time or regular.
func ExtractJobType(utterance string) (string, bool) {
	text := strings.ToLower(utterance)
	oneTime := containsAny(text, oneTimeSignals)
	regular := containsAny(text, regularSignals)
	switch {
	case oneTime && !regular:
		return JobTypeOneTime, true
	case regular && !oneTime:
		return JobTypeRegular, true
	default:
		return "", false
	}
}

// ---------- visit frequency ----------

// frequencyTable is the authoritative phrase→visits-per-week mapping. Order
// matters: longer phrases sit above their substrings.
var frequencyTable = []struct {
	phrase string
	visits float64
}{
	{"three times a week", 3},
	{"3 times a week", 3},
	{"twice a week", 2},
	{"two times a week", 2},
	{"every other week", 0.5},
	{"every two weeks", 0.5},
	{"fortnightly", 0.5},
	{"bi-weekly", 0.5},
	{"biweekly", 0.5},
	{"every weekday", 5},
	{"monday to friday", 5},
	{"every day including weekends", 7},
	{"seven days a week", 7},
	{"7 days a week", 7},
	{"every day", 7},
	{"daily", 7},
	{"once a month", 0.25},
	{"once monthly", 0.25},
	{"monthly", 0.25},
	{"once a week", 1},
	{"once weekly", 1},
	{"weekly", 1},
	{"every week", 1},
}

// ambiguousFrequency words carry no number and must force a clarifying
// question rather than a guess.
var ambiguousFrequency = []string{
	"regularly", "occasionally", "as needed", "when needed", "sometimes",
	"now and then", "ad hoc", "flexible",
}

var timesPerWeekRE = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(?:times?|visits?|days?)?\s*(?:a|per|each)\s*week\b`)

// ExtractFrequency resolves a visits-per-week number from the fixed phrase
// table, or from a free-standing "N per week". Ambiguous temporal words
// never resolve.
func ExtractFrequency(utterance string) (float64, bool) {
	text := strings.ToLower(utterance)
	if containsAny(text, ambiguousFrequency) {
		return 0, false
	}
	for _, entry := range frequencyTable {
		if strings.Contains(text, entry.phrase) {
			return entry.visits, true
		}
	}
	if m := timesPerWeekRE.FindStringSubmatch(text); m != nil {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

// ---------- extras ----------

var extrasKeywords = []struct {
	keywords  []string
	canonical string
}{
	{[]string{"oven"}, "Oven cleaning"},
	{[]string{"window"}, "Internal windows"},
	{[]string{"fridge", "refrigerator"}, "Fridge cleaning"},
	{[]string{"freezer"}, "Freezer cleaning"},
	{[]string{"carpet"}, "Carpet cleaning"},
	{[]string{"upholstery", "sofa", "couch"}, "Upholstery cleaning"},
	{[]string{"ironing"}, "Ironing"},
	{[]string{"balcony"}, "Balcony cleaning"},
	{[]string{"blinds"}, "Blinds cleaning"},
}

var extrasNegations = map[string]bool{
	"no": true, "not": true, "without": true, "skip": true,
	"dont": true, "wont": true,
}

// ExtractExtras returns the canonical names of every allow-listed extra
// mentioned, deduplicated, in mention-keyword order. A mention with a
// negation within the three words before it ("no oven thanks") is ignored.
func ExtractExtras(utterance string) []string {
	text := strings.ReplaceAll(strings.ToLower(utterance), "'", "")
	tokens := strings.Fields(nonTokenRE.ReplaceAllString(text, " "))
	var found []string
	seen := make(map[string]bool)
	for _, entry := range extrasKeywords {
		if seen[entry.canonical] {
			continue
		}
		for i, tok := range tokens {
			if !tokenMatchesAny(tok, entry.keywords) || negatedAt(tokens, i) {
				continue
			}
			found = append(found, entry.canonical)
			seen[entry.canonical] = true
			break
		}
	}
	return found
}

func tokenMatchesAny(tok string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(tok, kw) {
			return true
		}
	}
	return false
}

func negatedAt(tokens []string, i int) bool {
	for j := i - 1; j >= 0 && j >= i-3; j-- {
		if extrasNegations[tokens[j]] {
			return true
		}
	}
	return false
}

// ---------- counts ----------

var numberWords = map[string]int{
	"zero": 0, "none": 0, "no": 0,
	"one": 1, "single": 1,
	"two": 2, "couple": 2,
	"three": 3, "four": 4, "five": 5, "six": 6, "seven": 7,
	"eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

var bareNumberRE = regexp.MustCompile(`\b(\d{1,3})\b`)

// ExtractCount pulls a small non-negative integer from an utterance, from
// digits first and then number words. Used for room counts and extras
// quantities.
func ExtractCount(utterance string) (int, bool) {
	text := strings.ToLower(utterance)
	if m := bareNumberRE.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 0 {
			return n, true
		}
	}
	for _, tok := range strings.Fields(nonTokenRE.ReplaceAllString(text, " ")) {
		if n, ok := numberWords[tok]; ok {
			return n, true
		}
	}
	if strings.Contains(text, "couple") {
		return 2, true
	}
	return 0, false
}

// ---------- hours ----------

var hoursRE = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`)

// ExtractHours pulls a preferred-hours figure. A bare number is accepted
// because the engine only asks for hours at the hours stage.
func ExtractHours(utterance string) (float64, bool) {
	text := strings.ToLower(utterance)
	if m := hoursRE.FindStringSubmatch(text); m != nil {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil && n > 0 {
			return n, true
		}
	}
	if strings.Contains(text, "half a day") {
		return 4, true
	}
	if strings.Contains(text, "full day") || strings.Contains(text, "whole day") {
		return 8, true
	}
	if n, ok := ExtractCount(utterance); ok && n > 0 {
		return float64(n), true
	}
	return 0, false
}

// ---------- yes / no ----------

var (
	yesSignals = []string{"yes", "yeah", "yep", "correct", "thats right", "exactly", "sure", "right", "aye", "go ahead", "please do", "sounds good"}
	noSignals  = []string{"no", "nope", "not", "wrong", "don't", "dont", "never mind", "nevermind", "incorrect"}
)

// ExtractYesNo interprets a confirmation turn. Mixed or absent signals stay
// unresolved.
func ExtractYesNo(utterance string) (bool, bool) {
	text := strings.ToLower(utterance)
	yes := containsAnyWord(text, yesSignals)
	no := containsAnyWord(text, noSignals)
	switch {
	case yes && !no:
		return true, true
	case no && !yes:
		return false, true
	default:
		return false, false
	}
}

// ---------- areas scope ----------

var areasScopeRE = regexp.MustCompile(`(?i)\b(?:just|only)\s+(?:the\s+)?([a-z][a-z\s,]+?)(?:\s*(?:please|thanks))?[.!?]?$`)

// ExtractAreasScope detects the caller restricting the job to specific
// areas ("just the kitchen and bathrooms"). A match forces the service to a
// deep clean of those areas.
func ExtractAreasScope(utterance string) (string, bool) {
	m := areasScopeRE.FindStringSubmatch(strings.TrimSpace(utterance))
	if m == nil {
		return "", false
	}
	scope := strings.TrimSpace(m[1])
	if scope == "" {
		return "", false
	}
	return scope, true
}

// containsAny reports whether text contains any of the given substrings.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// containsAnyWord matches keywords on word boundaries, so "no" does not
// fire inside "know" or "number".
func containsAnyWord(text string, keywords []string) bool {
	text = strings.ReplaceAll(strings.ToLower(text), "'", "")
	words := strings.Fields(nonTokenRE.ReplaceAllString(text, " "))
	joined := " " + strings.Join(words, " ") + " "
	for _, kw := range keywords {
		if strings.Contains(joined, " "+kw+" ") {
			return true
		}
	}
	return false
}
