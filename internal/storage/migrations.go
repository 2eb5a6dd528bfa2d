package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS merchant_patterns (
					pattern TEXT PRIMARY KEY,
					category TEXT NOT NULL,
					confidence_score REAL NOT NULL DEFAULT 0.7,
					usage_count INTEGER NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS default_rules (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					rule_type TEXT NOT NULL CHECK (rule_type IN ('keyword', 'merchant')),
					rule_value TEXT NOT NULL,
					category TEXT NOT NULL,
					confidence_score REAL NOT NULL DEFAULT 0.5,
					transaction_type_id INTEGER NOT NULL,
					is_active INTEGER NOT NULL DEFAULT 1,
					UNIQUE(rule_type, rule_value, transaction_type_id)
				)`,

				`CREATE TABLE IF NOT EXISTS training_samples (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					description TEXT NOT NULL,
					category TEXT NOT NULL,
					amount REAL NOT NULL DEFAULT 0,
					transaction_type_id INTEGER NOT NULL DEFAULT 0,
					verified INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS feedback_records (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					description TEXT NOT NULL,
					suggested_category TEXT NOT NULL,
					actual_category TEXT NOT NULL,
					was_accepted INTEGER NOT NULL,
					confidence_score REAL NOT NULL DEFAULT 0,
					amount REAL,
					merchant_pattern TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					date DATETIME NOT NULL,
					description TEXT NOT NULL,
					amount REAL NOT NULL,
					category TEXT,
					transaction_type_id INTEGER NOT NULL DEFAULT 1,
					user_id TEXT,
					account_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Indexes for engine read paths",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE INDEX IF NOT EXISTS idx_merchant_patterns_confidence ON merchant_patterns(confidence_score DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_default_rules_type ON default_rules(transaction_type_id, is_active)`,
				`CREATE INDEX IF NOT EXISTS idx_training_samples_verified ON training_samples(verified)`,
				`CREATE INDEX IF NOT EXISTS idx_feedback_records_created ON feedback_records(created_at)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, date DESC)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Seed starter default rules",
		Up: func(tx *sql.Tx) error {
			type seedRule struct {
				ruleType   string
				ruleValue  string
				category   string
				confidence float64
				txnType    int
			}

			seeds := []seedRule{
				{"keyword", "grocery", "Groceries", 0.75, 1},
				{"keyword", "supermarket", "Groceries", 0.75, 1},
				{"keyword", "restaurant", "Dining", 0.7, 1},
				{"keyword", "coffee", "Dining", 0.65, 1},
				{"keyword", "pharmacy", "Health", 0.7, 1},
				{"keyword", "gas", "Transport", 0.6, 1},
				{"keyword", "parking", "Transport", 0.7, 1},
				{"keyword", "uber", "Transport", 0.7, 1},
				{"keyword", "lyft", "Transport", 0.7, 1},
				{"keyword", "rent", "Housing", 0.75, 1},
				{"keyword", "insurance", "Insurance", 0.7, 1},
				{"keyword", "subscription", "Subscriptions", 0.65, 1},
				{"merchant", "netflix", "Subscriptions", 0.85, 1},
				{"merchant", "spotify", "Subscriptions", 0.85, 1},
				{"merchant", "amazon", "Shopping", 0.7, 1},
				{"keyword", "payroll", "Salary", 0.85, 2},
				{"keyword", "salary", "Salary", 0.85, 2},
				{"keyword", "dividend", "Investment Income", 0.8, 2},
				{"keyword", "interest", "Interest Income", 0.75, 2},
				{"keyword", "refund", "Refunds", 0.7, 2},
				{"keyword", "savings", "Savings Transfer", 0.75, 3},
				{"keyword", "transfer to savings", "Savings Transfer", 0.85, 3},
				{"keyword", "investment", "Investment Contribution", 0.7, 3},
			}

			for _, seed := range seeds {
				_, err := tx.Exec(`
					INSERT OR IGNORE INTO default_rules
						(rule_type, rule_value, category, confidence_score, transaction_type_id, is_active)
					VALUES (?, ?, ?, ?, ?, 1)
				`, seed.ruleType, seed.ruleValue, seed.category, seed.confidence, seed.txnType)
				if err != nil {
					return fmt.Errorf("failed to seed rule %q: %w", seed.ruleValue, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
