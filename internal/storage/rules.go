package storage

import (
	"context"
	"fmt"

	"github.com/kashhq/kash/internal/model"
)

// LoadDefaultRules retrieves all active default rules.
func (s *SQLiteStorage) LoadDefaultRules(ctx context.Context) ([]model.DefaultRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rule_type, rule_value, category, confidence_score, transaction_type_id
		FROM default_rules
		WHERE is_active = 1
		ORDER BY transaction_type_id, confidence_score DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query default rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.DefaultRule
	for rows.Next() {
		var rule model.DefaultRule
		if err := rows.Scan(&rule.ID, &rule.RuleType, &rule.RuleValue, &rule.Category,
			&rule.ConfidenceScore, &rule.TransactionTypeID); err != nil {
			return nil, fmt.Errorf("failed to scan default rule: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// SaveDefaultRule inserts or replaces a default rule.
func (s *SQLiteStorage) SaveDefaultRule(ctx context.Context, rule *model.DefaultRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDefaultRule(rule); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO default_rules (rule_type, rule_value, category, confidence_score, transaction_type_id, is_active)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT(rule_type, rule_value, transaction_type_id) DO UPDATE SET
			category = excluded.category,
			confidence_score = excluded.confidence_score,
			is_active = 1
	`, rule.RuleType, rule.RuleValue, rule.Category, rule.ConfidenceScore, rule.TransactionTypeID)

	if err != nil {
		return fmt.Errorf("failed to save default rule: %w", err)
	}
	return nil
}
