// Package features turns free-text transaction descriptions into flat string
// feature sets for the statistical classifier. Extraction is pure and
// deterministic; every sub-step is independently fault-tolerant, so a failure
// in one step only costs its features.
package features

import (
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
	"github.com/kljensen/snowball"
)

// Tokens longer than this after stemming are noise (concatenated reference
// numbers, base64 blobs) and are dropped.
const maxTokenLength = 50

// domainTagRules maps banking-operation keywords to domain tags. Each present
// term appends one tag; repeated terms append repeatedly (no dedup).
var domainTagRules = []struct {
	re  *regexp.Regexp
	tag string
}{
	{regexp.MustCompile(`\bach\b`), "op_ach"},
	{regexp.MustCompile(`\bwire\b`), "op_wire"},
	{regexp.MustCompile(`\batm\b`), "op_atm"},
	{regexp.MustCompile(`\bpos\b`), "op_pos"},
	{regexp.MustCompile(`\bzelle\b`), "op_zelle"},
	{regexp.MustCompile(`\bwithdrawal\b`), "op_withdrawal"},
	{regexp.MustCompile(`\bw/d\b`), "op_withdrawal"},
	{regexp.MustCompile(`\bdeposit\b`), "op_deposit"},
	{regexp.MustCompile(`\bdebit\b`), "op_debit"},
	{regexp.MustCompile(`\bcredit\b`), "op_credit"},
	{regexp.MustCompile(`\btransfer\b`), "op_transfer"},
	{regexp.MustCompile(`\bcheck\b`), "op_check"},
}

var (
	// Masked account or card references: "XXXX1234", "#0042".
	accountRefPattern = regexp.MustCompile(`[x]{2,}\d{2,}|#\d{4,}`)
	// Embedded currency amounts: "$12.50".
	embeddedAmountPattern = regexp.MustCompile(`\$\d`)
	hasAlnumPattern       = regexp.MustCompile(`[a-z0-9]`)
)

// Extract converts a description and amount into a flat list of string
// features: stemmed tokens, a merchant tag, amount and length buckets,
// banking-operation tags, and named-entity tags. An empty description yields
// an empty list. Repeated tokens are kept; they bias the classifier
// correctly.
func Extract(description string, amount float64) []string {
	normalized := strings.ToLower(strings.TrimSpace(description))
	if normalized == "" {
		return nil
	}

	features := make([]string, 0, 16)

	// Tokenize, drop stop words, stem.
	for _, token := range Tokenize(normalized) {
		if isStopWord(token) {
			continue
		}
		stemmed, err := snowball.Stem(token, "english", false)
		if err != nil {
			stemmed = token
		}
		if stemmed == "" || len(stemmed) > maxTokenLength {
			continue
		}
		features = append(features, stemmed)
	}

	if tag := MerchantTag(normalized); tag != "" {
		features = append(features, "merchant_"+tagValue(tag))
	}

	if bucket := amountBucket(amount); bucket != "" {
		features = append(features, bucket)
	}

	features = append(features, lengthBucket(normalized))
	features = append(features, domainTags(normalized)...)
	features = append(features, entityTags(description)...)

	return features
}

// Tokenize splits a description into lower-cased word tokens. This is the
// pre-stemming token stream also used for history similarity. On tokenizer
// failure it falls back to splitting on whitespace.
func Tokenize(description string) []string {
	text := strings.ToLower(strings.TrimSpace(description))
	if text == "" {
		return nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		slog.Debug("tokenizer failed, splitting on whitespace", "error", err)
		return strings.Fields(text)
	}

	tokens := make([]string, 0, len(doc.Tokens()))
	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if hasAlnumPattern.MatchString(word) {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// amountBucket classifies a transaction amount into a coarse size bucket.
// Only finite positive amounts contribute a feature.
func amountBucket(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return ""
	}
	switch {
	case amount <= 10:
		return "amount_very_small"
	case amount <= 50:
		return "amount_small"
	case amount <= 200:
		return "amount_medium"
	case amount <= 1000:
		return "amount_large"
	default:
		return "amount_very_large"
	}
}

func lengthBucket(description string) string {
	switch {
	case len(description) <= 10:
		return "desc_short"
	case len(description) <= 30:
		return "desc_medium"
	default:
		return "desc_long"
	}
}

// domainTags scans for banking-operation keywords and account/amount
// reference patterns in the normalized description.
func domainTags(normalized string) []string {
	var tags []string
	for _, rule := range domainTagRules {
		if rule.re.MatchString(normalized) {
			tags = append(tags, rule.tag)
		}
	}
	if accountRefPattern.MatchString(normalized) {
		tags = append(tags, "has_account_ref")
	}
	if embeddedAmountPattern.MatchString(normalized) {
		tags = append(tags, "has_amount")
	}
	return tags
}

// entityTags extracts place and organization entities from the original
// (case-preserved) description. Extraction failure contributes nothing.
func entityTags(description string) []string {
	doc, err := prose.NewDocument(strings.TrimSpace(description))
	if err != nil {
		slog.Debug("entity extraction failed", "error", err)
		return nil
	}

	var tags []string
	for _, ent := range doc.Entities() {
		switch ent.Label {
		case "GPE":
			tags = append(tags, "place_"+tagValue(ent.Text))
		case "ORG":
			tags = append(tags, "org_"+tagValue(ent.Text))
		}
	}
	return tags
}

func tagValue(text string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(text)), " ", "_")
}

// JaccardSimilarity computes |A∩B| / |A∪B| over two token sets.
func JaccardSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
