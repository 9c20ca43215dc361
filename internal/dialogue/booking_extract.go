package dialogue

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Booking-field extractors. Same contract as the quote extractors: pure
// functions, no call state.

const nameWord = `[\p{L}][\p{L}\p{M}'-]*`

var namePhrase = nameWord + `(?:\s+` + nameWord + `){0,3}`

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is\s+(` + namePhrase + `)`),
	regexp.MustCompile(`(?i)i'?m\s+(` + namePhrase + `)(?:\s|,|\.|!|$)`),
	regexp.MustCompile(`(?i)i am\s+(` + namePhrase + `)(?:\s|,|\.|!|$)`),
	regexp.MustCompile(`(?i)this is\s+(` + namePhrase + `)`),
	regexp.MustCompile(`(?i)it'?s\s+(` + namePhrase + `)(?:\s|,|\.|!|$)`),
	regexp.MustCompile(`(?i)name'?s\s+(` + namePhrase + `)`),
}

var bareNameRE = regexp.MustCompile(`(?i)^(` + nameWord + `(?:\s+` + nameWord + `){1,3})$`)

// ExtractName pulls a caller's name from an introduction phrase, or accepts
// a bare two-to-four word answer at the name stage.
func ExtractName(utterance string) (string, bool) {
	text := strings.TrimSpace(utterance)
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return titleCaseName(m[1]), true
		}
	}
	if m := bareNameRE.FindStringSubmatch(text); m != nil {
		return titleCaseName(m[1]), true
	}
	return "", false
}

func titleCaseName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

var phoneDigitsRE = regexp.MustCompile(`[\d\s()+-]{7,}`)

// ExtractPhone finds a UK phone number and normalizes it to E.164. Spoken
// digit words ("oh seven seven...") are mapped before parsing.
func ExtractPhone(utterance string) (string, bool) {
	text := strings.ToLower(utterance)
	var sb strings.Builder
	for _, tok := range strings.Fields(text) {
		if d, ok := digitWords[tok]; ok {
			sb.WriteString(d)
			continue
		}
		if tok == "double" {
			continue
		}
		sb.WriteString(" " + tok + " ")
	}
	candidate := phoneDigitsRE.FindString(sb.String())
	if strings.TrimSpace(candidate) == "" {
		return "", false
	}
	// Possible-number check rather than strict validation: transcribed
	// speech regularly lands in ranges the carrier metadata lags behind on.
	num, err := phonenumbers.Parse(strings.TrimSpace(candidate), "GB")
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return "", false
	}
	return phonenumbers.Format(num, phonenumbers.E164), true
}

var emailRE = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

var spokenEmailReplacer = strings.NewReplacer(
	" at ", "@",
	" dot ", ".",
	" underscore ", "_",
	" dash ", "-",
	" hyphen ", "-",
)

// ExtractEmail finds an email address, normalizing spoken forms
// ("john dot smith at gmail dot com") first.
func ExtractEmail(utterance string) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(utterance))
	if m := emailRE.FindString(text); m != "" {
		return m, true
	}
	spoken := spokenEmailReplacer.Replace(" " + text + " ")
	spoken = strings.ReplaceAll(spoken, " ", "")
	if m := emailRE.FindString(spoken); m != "" {
		return m, true
	}
	return "", false
}

var (
	weekdayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	monthNames   = []string{"january", "february", "march", "april", "may", "june", "july", "august", "september", "october", "november", "december"}

	numericDateRE = regexp.MustCompile(`\b(\d{1,2})[/.-](\d{1,2})(?:[/.-](\d{2,4}))?\b`)
	dayOfMonthRE  = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + strings.Join(monthNames, "|") + `)\b`)
	monthDayRE    = regexp.MustCompile(`\b(` + strings.Join(monthNames, "|") + `)\s+(?:the\s+)?(\d{1,2})(?:st|nd|rd|th)?\b`)
	relativeDayRE = regexp.MustCompile(`\b(today|tomorrow|day after tomorrow)\b`)
	weekdayRE     = regexp.MustCompile(`\b(?:(next|this)\s+)?(` + strings.Join(weekdayNames, "|") + `)\b`)
)

// ExtractDate captures a preferred date as the caller phrased it, lightly
// normalized. Scheduling against a calendar belongs to the booking service;
// the dialogue only needs a human-actionable value.
func ExtractDate(utterance string) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(utterance))
	if m := dayOfMonthRE.FindStringSubmatch(text); m != nil {
		return m[1] + " " + titleCaseName(m[2]), true
	}
	if m := monthDayRE.FindStringSubmatch(text); m != nil {
		return m[2] + " " + titleCaseName(m[1]), true
	}
	if m := numericDateRE.FindString(text); m != "" {
		return m, true
	}
	if m := relativeDayRE.FindString(text); m != "" {
		return m, true
	}
	if m := weekdayRE.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			return m[1] + " " + titleCaseName(m[2]), true
		}
		return titleCaseName(m[2]), true
	}
	return "", false
}

var (
	clockTimeRE  = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm|a\.m\.|p\.m\.)\b`)
	oclockRE     = regexp.MustCompile(`\b(\d{1,2})\s*o'?clock\b`)
	timeOfDayRE  = regexp.MustCompile(`\b(morning|afternoon|evening|midday|noon|lunchtime)\b`)
	bare24TimeRE = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
)

// ExtractTime captures a preferred time of day.
func ExtractTime(utterance string) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(utterance))
	if m := clockTimeRE.FindStringSubmatch(text); m != nil {
		t := m[1]
		if m[2] != "" {
			t += ":" + m[2]
		}
		ampm := strings.ReplaceAll(m[3], ".", "")
		return t + ampm, true
	}
	if m := bare24TimeRE.FindString(text); m != "" {
		return m, true
	}
	if m := oclockRE.FindStringSubmatch(text); m != nil {
		return m[1] + " o'clock", true
	}
	if m := timeOfDayRE.FindString(text); m != "" {
		return m, true
	}
	return "", false
}

var addressRE = regexp.MustCompile(`(?i)\b\d+[a-z]?\s+[\p{L}][\p{L}\s.'-]+\b`)

// ExtractAddress accepts a street address: a house number followed by a
// street name, or at the address stage any reasonably long answer.
func ExtractAddress(utterance string) (string, bool) {
	text := strings.TrimSpace(utterance)
	if m := addressRE.FindString(text); m != "" {
		return strings.TrimSpace(m), true
	}
	if len(strings.Fields(text)) >= 3 {
		return text, true
	}
	return "", false
}
