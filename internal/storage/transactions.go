package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kashhq/kash/internal/model"
)

// SaveTransactions stores transactions, skipping duplicates by hash.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions
			(id, hash, date, description, amount, category, transaction_type_id, user_id, account_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		category := sql.NullString{String: txn.Category, Valid: txn.Category != ""}
		userID := sql.NullString{String: txn.UserID, Valid: txn.UserID != ""}
		accountID := sql.NullString{String: txn.AccountID, Valid: txn.AccountID != ""}

		if _, err := stmt.ExecContext(ctx,
			txn.ID, txn.Hash, txn.Date, txn.Description, txn.Amount,
			category, txn.TransactionTypeID, userID, accountID); err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// LoadHistoricalTransactions retrieves categorized transactions for bulk
// classifier training, newest first.
func (s *SQLiteStorage) LoadHistoricalTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hash, date, description, amount, category, transaction_type_id,
			COALESCE(user_id, ''), COALESCE(account_id, '')
		FROM transactions
		WHERE category IS NOT NULL AND category != '' AND description != ''
		ORDER BY date DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		if err := rows.Scan(&txn.ID, &txn.Hash, &txn.Date, &txn.Description, &txn.Amount,
			&txn.Category, &txn.TransactionTypeID, &txn.UserID, &txn.AccountID); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}

// LoadUserTransactions retrieves a user's most recently categorized
// transactions for history matching.
func (s *SQLiteStorage) LoadUserTransactions(ctx context.Context, userID string, limit int) ([]model.UserTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT description, category
		FROM transactions
		WHERE user_id = ? AND category IS NOT NULL AND category != ''
		ORDER BY date DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query user transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.UserTransaction
	for rows.Next() {
		var txn model.UserTransaction
		if err := rows.Scan(&txn.Description, &txn.Category); err != nil {
			return nil, fmt.Errorf("failed to scan user transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}

	return transactions, rows.Err()
}
