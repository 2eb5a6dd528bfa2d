package storage

import (
	"context"
	"fmt"

	"github.com/kashhq/kash/internal/model"
)

// LoadVerifiedTrainingSamples retrieves the full verified training corpus.
func (s *SQLiteStorage) LoadVerifiedTrainingSamples(ctx context.Context) ([]model.TrainingSample, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description, category, amount, transaction_type_id, verified, created_at
		FROM training_samples
		WHERE verified = 1
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query training samples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var samples []model.TrainingSample
	for rows.Next() {
		var sample model.TrainingSample
		if err := rows.Scan(&sample.ID, &sample.Description, &sample.Category, &sample.Amount,
			&sample.TransactionTypeID, &sample.Verified, &sample.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan training sample: %w", err)
		}
		samples = append(samples, sample)
	}

	return samples, rows.Err()
}

// AppendTrainingSample adds one sample to the training corpus.
func (s *SQLiteStorage) AppendTrainingSample(ctx context.Context, sample *model.TrainingSample) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTrainingSample(sample); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO training_samples (description, category, amount, transaction_type_id, verified)
		VALUES (?, ?, ?, ?, ?)
	`, sample.Description, sample.Category, sample.Amount, sample.TransactionTypeID, sample.Verified)

	if err != nil {
		return fmt.Errorf("failed to append training sample: %w", err)
	}
	return nil
}
