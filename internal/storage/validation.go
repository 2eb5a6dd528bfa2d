package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kashhq/kash/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidPattern     = errors.New("invalid merchant pattern")
	ErrInvalidRule        = errors.New("invalid default rule")
	ErrInvalidSample      = errors.New("invalid training sample")
	ErrInvalidFeedback    = errors.New("invalid feedback record")
	ErrInvalidTransaction = errors.New("invalid transaction")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateMerchantPattern(pattern *model.MerchantPattern) error {
	if pattern == nil {
		return fmt.Errorf("%w: pattern", ErrNilParameter)
	}
	if strings.TrimSpace(pattern.Pattern) == "" {
		return fmt.Errorf("%w: missing pattern key", ErrInvalidPattern)
	}
	if strings.TrimSpace(pattern.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidPattern)
	}
	if pattern.ConfidenceScore < 0 || pattern.ConfidenceScore > 1 {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidPattern)
	}
	if pattern.UsageCount < 0 {
		return fmt.Errorf("%w: usage count cannot be negative", ErrInvalidPattern)
	}
	return nil
}

func validateDefaultRule(rule *model.DefaultRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	switch rule.RuleType {
	case model.RuleTypeKeyword, model.RuleTypeMerchant:
	default:
		return fmt.Errorf("%w: unknown rule type %q", ErrInvalidRule, rule.RuleType)
	}
	if strings.TrimSpace(rule.RuleValue) == "" {
		return fmt.Errorf("%w: missing rule value", ErrInvalidRule)
	}
	if strings.TrimSpace(rule.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidRule)
	}
	if rule.TransactionTypeID <= 0 {
		return fmt.Errorf("%w: missing transaction type", ErrInvalidRule)
	}
	return nil
}

func validateTrainingSample(sample *model.TrainingSample) error {
	if sample == nil {
		return fmt.Errorf("%w: sample", ErrNilParameter)
	}
	if strings.TrimSpace(sample.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidSample)
	}
	if strings.TrimSpace(sample.Category) == "" {
		return fmt.Errorf("%w: missing category", ErrInvalidSample)
	}
	return nil
}

func validateFeedbackRecord(record *model.FeedbackRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidFeedback)
	}
	if strings.TrimSpace(record.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidFeedback)
	}
	if strings.TrimSpace(record.ActualCategory) == "" {
		return fmt.Errorf("%w: missing actual category", ErrInvalidFeedback)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.Description == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTransaction)
	}
	return nil
}
