package model

import "time"

// Transaction type identifiers used to scope default rules.
const (
	TransactionTypeExpense = 1
	TransactionTypeIncome  = 2
	TransactionTypeSavings = 3
)

// MerchantPattern maps a known merchant substring to a category.
// Patterns are reinforced by user feedback: every correction that names the
// same merchant bumps UsageCount and overwrites Category.
type MerchantPattern struct {
	UpdatedAt       time.Time
	Pattern         string // case-insensitive match key, stored upper-cased
	Category        string
	ConfidenceScore float64
	UsageCount      int
}

// RuleType indicates how a default rule's value is interpreted.
type RuleType string

const (
	// RuleTypeKeyword matches a keyword anywhere in the description.
	RuleTypeKeyword RuleType = "keyword"
	// RuleTypeMerchant matches a merchant name anywhere in the description.
	RuleTypeMerchant RuleType = "merchant"
)

// DefaultRule is a static keyword/merchant-to-category mapping scoped by
// transaction type. Rules are read-only at runtime.
type DefaultRule struct {
	RuleType          RuleType
	RuleValue         string
	Category          string
	ConfidenceScore   float64
	TransactionTypeID int
	ID                int
}
