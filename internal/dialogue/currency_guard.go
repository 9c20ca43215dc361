package dialogue

import (
	"regexp"
	"strings"
)

// The business quotes in pounds sterling only. Upstream components (the AI
// collaborator, the pricing service) occasionally produce dollar figures;
// nothing they emit is trusted, so every outward sentence passes through
// this filter at the output boundary.

// CurrencyCorrection is the fixed pounds-only sentence spoken in place of
// any reply that carried a dollar marker.
const CurrencyCorrection = "Just to be clear, all of our prices are in pounds sterling. " +
	"Let me double-check that figure for you."

var dollarMarkers = []*regexp.Regexp{
	regexp.MustCompile(`\$`),
	regexp.MustCompile(`(?i)\bdollars?\b`),
	regexp.MustCompile(`(?i)\busd\b`),
	regexp.MustCompile(`(?i)\bbucks\b`),
	regexp.MustCompile(`(?i)\bcents?\b`),
}

// ContainsDollarMarker reports whether text carries any dollar-denominated
// content.
func ContainsDollarMarker(text string) bool {
	for _, re := range dollarMarkers {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// LockCurrency returns the reply unchanged when it is pounds-clean, and the
// fixed correction sentence otherwise. tripped reports whether the lock
// fired so callers can count it.
func LockCurrency(reply string) (out string, tripped bool) {
	if strings.TrimSpace(reply) == "" {
		return reply, false
	}
	if ContainsDollarMarker(reply) {
		return CurrencyCorrection, true
	}
	return reply, false
}
