package dialogue

import (
	"regexp"
	"strings"
)

// natoAlphabet maps phonetic alphabet words (and a few common variants
// callers actually use) to their letters.
var natoAlphabet = map[string]string{
	"alpha": "A", "alfa": "A",
	"bravo":   "B",
	"charlie": "C",
	"delta":   "D",
	"echo":    "E",
	"foxtrot": "F",
	"golf":    "G",
	"hotel":   "H",
	"india":   "I",
	"juliet":  "J", "juliett": "J",
	"kilo":     "K",
	"lima":     "L",
	"mike":     "M",
	"november": "N",
	"oscar":    "O",
	"papa":     "P",
	"quebec":   "Q",
	"romeo":    "R",
	"sierra":   "S",
	"tango":    "T",
	"uniform":  "U",
	"victor":   "V",
	"whiskey":  "W", "whisky": "W",
	"xray": "X", "x-ray": "X",
	"yankee": "Y",
	"zulu":   "Z",
}

var digitWords = map[string]string{
	"zero": "0", "oh": "0", "nought": "0",
	"one": "1", "won": "1",
	"two": "2", "to": "2", "too": "2",
	"three": "3",
	"four":  "4", "for": "4",
	"five": "5",
	"six":  "6",
	"seven": "7",
	"eight": "8", "ate": "8",
	"nine": "9",
}

var (
	// "S for Sun", "B as in Bravo", "T like Tango"
	phoneticSpellRE = regexp.MustCompile(`(?i)\b([a-z])\s+(?:for|as\s+in|like)\s+[a-z]+\b`)
	// "double u" is the letter W, not two Us; checked before pair doubling.
	doubleURE = regexp.MustCompile(`(?i)\bdouble\s+u\b`)
	// "double <letter/word>" doubles the following symbol.
	doubleRE = regexp.MustCompile(`(?i)^double$`)

	postcodeShapeRE = regexp.MustCompile(`^[A-Z]{1,2}[0-9][A-Z0-9]?[0-9][A-Z]{2}$`)
	nonTokenRE      = regexp.MustCompile(`[^a-z0-9\s-]`)
	bareTokenRE     = regexp.MustCompile(`^[a-z0-9]{1,7}$`)
)

// fillerWords are conversational tokens that precede or surround a spelled
// postcode ("my postcode is ...") and must not be read as literal symbols.
var fillerWords = map[string]bool{
	"my": true, "is": true, "it": true, "its": true, "the": true,
	"yes": true, "yeah": true, "okay": true, "ok": true, "um": true,
	"uh": true, "erm": true, "so": true, "that": true, "this": true,
	"and": true, "sure": true, "right": true, "think": true,
}

// DecodePostcode turns a spoken letter/digit sequence into a canonical UK
// postcode. Callers spell postcodes every way imaginable: bare letters
// ("s w one a"), NATO words ("sierra whiskey"), phonetic disambiguation
// ("s for sun"), and "double u" for W. The decoder maps every token it can
// resolve, concatenates the symbols in order, and only returns a value when
// the result has a valid UK postcode shape. Anything else is no match; the
// engine owns retry policy.
func DecodePostcode(utterance string) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(utterance))
	if text == "" {
		return "", false
	}

	var symbols []string

	// Phonetic spellings are extracted first and removed so their example
	// words don't get re-read as NATO or literal tokens.
	for _, m := range phoneticSpellRE.FindAllStringSubmatch(text, -1) {
		symbols = append(symbols, strings.ToUpper(m[1]))
	}
	text = phoneticSpellRE.ReplaceAllString(text, " ")

	text = doubleURE.ReplaceAllString(text, " w ")
	text = nonTokenRE.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "-", " ")

	tokens := strings.Fields(text)
	doubleNext := false
	for _, tok := range tokens {
		if fillerWords[tok] || tok == "postcode" || tok == "post" || tok == "code" {
			continue
		}
		if doubleRE.MatchString(tok) {
			doubleNext = true
			continue
		}
		sym := resolveToken(tok)
		if sym == "" {
			doubleNext = false
			continue
		}
		symbols = append(symbols, sym)
		if doubleNext {
			symbols = append(symbols, sym)
			doubleNext = false
		}
	}

	candidate := strings.Join(symbols, "")
	if !postcodeShapeRE.MatchString(candidate) {
		return "", false
	}
	return candidate[:len(candidate)-3] + " " + candidate[len(candidate)-3:], true
}

// resolveToken maps one token to its symbol(s): single letters, NATO words,
// digit words, then bare alphanumeric runs of up to seven characters taken
// literally. Unresolvable tokens contribute nothing.
func resolveToken(tok string) string {
	if len(tok) == 1 {
		c := tok[0]
		if c >= 'a' && c <= 'z' {
			// Bare "o" is read as zero only by the digit table below when
			// spoken alone; as a letter it is ambiguous, prefer the letter.
			if c == 'o' {
				return "O"
			}
			return strings.ToUpper(tok)
		}
		if c >= '0' && c <= '9' {
			return tok
		}
		return ""
	}
	if letter, ok := natoAlphabet[tok]; ok {
		return letter
	}
	if digit, ok := digitWords[tok]; ok {
		return digit
	}
	if bareTokenRE.MatchString(tok) {
		return strings.ToUpper(tok)
	}
	return ""
}
