package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kashhq/kash/internal/common"
	"github.com/kashhq/kash/internal/model"
)

// LoadMerchantPatterns retrieves all merchant patterns ordered by stored
// confidence descending. The engine keeps that order for first-match lookups.
func (s *SQLiteStorage) LoadMerchantPatterns(ctx context.Context) ([]model.MerchantPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.loadMerchantPatternsTx(ctx, s.db)
}

func (s *SQLiteStorage) loadMerchantPatternsTx(ctx context.Context, q queryable) ([]model.MerchantPattern, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT pattern, category, confidence_score, usage_count, updated_at
		FROM merchant_patterns
		ORDER BY confidence_score DESC, pattern ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query merchant patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.MerchantPattern
	for rows.Next() {
		var p model.MerchantPattern
		var updatedAt time.Time
		if err := rows.Scan(&p.Pattern, &p.Category, &p.ConfidenceScore, &p.UsageCount, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan merchant pattern: %w", err)
		}
		p.UpdatedAt = updatedAt
		patterns = append(patterns, p)
	}

	return patterns, rows.Err()
}

// UpsertMerchantPattern inserts a new pattern or reinforces an existing one:
// on conflict the usage count is incremented and the category overwritten,
// while the stored confidence is left untouched.
func (s *SQLiteStorage) UpsertMerchantPattern(ctx context.Context, pattern *model.MerchantPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMerchantPattern(pattern); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO merchant_patterns (pattern, category, confidence_score, usage_count, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(pattern) DO UPDATE SET
			usage_count = usage_count + 1,
			category = excluded.category,
			updated_at = CURRENT_TIMESTAMP
	`, strings.ToUpper(pattern.Pattern), pattern.Category, pattern.ConfidenceScore, pattern.UsageCount)

	if err != nil {
		return fmt.Errorf("failed to upsert merchant pattern: %w", err)
	}
	return nil
}

// DeleteMerchantPattern removes a pattern by key.
func (s *SQLiteStorage) DeleteMerchantPattern(ctx context.Context, pattern string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(pattern, "pattern"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM merchant_patterns WHERE pattern = ?
	`, strings.ToUpper(pattern))
	if err != nil {
		return fmt.Errorf("failed to delete merchant pattern: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}

	return nil
}
