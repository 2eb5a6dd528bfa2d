// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/kashhq/kash/internal/model"
)

// Storage defines the contract for our persistence layer. The engine only
// ever sees plaintext records; any at-rest protection of stored fields is the
// implementation's concern.
type Storage interface {
	// Merchant pattern operations
	LoadMerchantPatterns(ctx context.Context) ([]model.MerchantPattern, error)
	UpsertMerchantPattern(ctx context.Context, pattern *model.MerchantPattern) error
	DeleteMerchantPattern(ctx context.Context, pattern string) error

	// Default rule operations
	LoadDefaultRules(ctx context.Context) ([]model.DefaultRule, error)
	SaveDefaultRule(ctx context.Context, rule *model.DefaultRule) error

	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	LoadHistoricalTransactions(ctx context.Context, limit int) ([]model.Transaction, error)
	LoadUserTransactions(ctx context.Context, userID string, limit int) ([]model.UserTransaction, error)

	// Training corpus operations
	LoadVerifiedTrainingSamples(ctx context.Context) ([]model.TrainingSample, error)
	AppendTrainingSample(ctx context.Context, sample *model.TrainingSample) error

	// Feedback audit trail
	AppendFeedbackRecord(ctx context.Context, record *model.FeedbackRecord) error
	CountFeedbackSince(ctx context.Context, since time.Time) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
