package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/kashhq/kash/internal/common"
	"github.com/kashhq/kash/internal/model"
)

// AppendFeedbackRecord persists one feedback audit entry. Records are
// append-only and never mutated.
func (s *SQLiteStorage) AppendFeedbackRecord(ctx context.Context, record *model.FeedbackRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateFeedbackRecord(record); err != nil {
		return err
	}

	amount := sql.NullFloat64{}
	if record.Amount != nil {
		amount = sql.NullFloat64{Float64: *record.Amount, Valid: true}
	}
	merchantPattern := sql.NullString{String: record.MerchantPattern, Valid: record.MerchantPattern != ""}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback_records
			(id, user_id, description, suggested_category, actual_category,
			 was_accepted, confidence_score, amount, merchant_pattern, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.UserID, record.Description, record.SuggestedCategory,
		record.ActualCategory, record.WasAccepted, record.ConfidenceScore,
		amount, merchantPattern, createdAt)

	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: feedback record %s", common.ErrDuplicateEntry, record.ID)
		}
		return fmt.Errorf("failed to append feedback record: %w", err)
	}
	return nil
}

// CountFeedbackSince counts feedback records created after the given time.
// The retraining pipeline uses this to decide whether enough new feedback has
// accumulated since the last run.
func (s *SQLiteStorage) CountFeedbackSince(ctx context.Context, since time.Time) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM feedback_records WHERE created_at > ?
	`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count feedback records: %w", err)
	}

	return count, nil
}
