package features

import (
	"regexp"
	"strings"
)

// merchantTagRules is the ordered list of extraction patterns. The order is
// load-bearing: earlier, more generic patterns shadow later ones, and the
// resulting category assignments depend on it. First match wins.
var merchantTagRules = []*regexp.Regexp{
	// Generic all-caps merchant prefix, e.g. "UBER TRIP 999" -> UBER
	regexp.MustCompile(`^([A-Z][A-Z0-9&.\-]{2,})`),
	// Capitalized word sequence, e.g. "Blue Bottle Coffee"
	regexp.MustCompile(`^((?:[A-Z][a-z]+ ?){1,3})`),
	// Leading word run before a trailing number or asterisk
	regexp.MustCompile(`^([A-Z][A-Z .\-]+?) *[*#0-9]`),
	// Accented all-caps prefix, e.g. "CAFÉ RENÉ 42"
	regexp.MustCompile(`^([A-ZÀ-Þ][A-ZÀ-Þ0-9&.\-]{2,})`),
	// Domestic banking-operation keywords
	regexp.MustCompile(`\b(ACH|WIRE|ATM|POS|ZELLE|TRANSFER|WITHDRAWAL|DEPOSIT|W/D|DEP)\b`),
}

// MerchantTag extracts a merchant tag from a transaction description using
// the ordered pattern rules. Matching is case-insensitive: the input is
// upper-cased before the rules run, so the same tag comes out of a raw and a
// normalized description. Returns "" when no rule yields a match of at least
// three characters.
func MerchantTag(description string) string {
	text := strings.ToUpper(strings.TrimSpace(description))
	if text == "" {
		return ""
	}

	for _, rule := range merchantTagRules {
		m := rule.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		tag := strings.TrimSpace(m[1])
		if len(tag) >= 3 {
			return tag
		}
	}

	return ""
}
