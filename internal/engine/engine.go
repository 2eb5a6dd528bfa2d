// Package engine implements the smart transaction categorization engine:
// four independent suggestion sources merged and ranked into at most three
// category suggestions, plus the feedback and retraining loops that keep the
// merchant pattern table and the statistical classifier current.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kashhq/kash/internal/classifier"
	"github.com/kashhq/kash/internal/model"
	"github.com/kashhq/kash/internal/service"
)

// Config holds tuning options for the categorization engine.
type Config struct {
	// HistoryLimit caps how many of a user's categorized transactions the
	// history source considers.
	HistoryLimit int
	// HistoryThreshold is the strict lower bound on Jaccard similarity for a
	// history match.
	HistoryThreshold float64
	// HistoryTimeout bounds the store lookup inside the request path.
	HistoryTimeout time.Duration
	// RetrainMinFeedback is the minimum number of new feedback records since
	// the last retrain before a retrain proceeds.
	RetrainMinFeedback int
	// RetrainMinCorpus is the minimum verified corpus size to retrain at all.
	RetrainMinCorpus int
	// BulkTrainingLimit caps historical transactions loaded for the initial
	// classifier build.
	BulkTrainingLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		HistoryLimit:       100,
		HistoryThreshold:   0.6,
		HistoryTimeout:     500 * time.Millisecond,
		RetrainMinFeedback: 10,
		RetrainMinCorpus:   50,
		BulkTrainingLimit:  10000,
	}
}

// request carries one suggestion call's inputs to the sources.
type request struct {
	description       string
	descLower         string
	userID            string
	amount            float64
	transactionTypeID int
}

// sourceFunc is one independent suggestion source. Sources never fail the
// call: a degraded source returns nothing and logs.
type sourceFunc func(ctx context.Context, req *request) []model.Suggestion

// Engine orchestrates suggestion, feedback recording, and retraining. It
// owns the in-memory pattern and rule tables and the classifier reference.
type Engine struct {
	store      service.Storage
	rules      map[int][]model.DefaultRule
	rankFn     func([]model.Suggestion) ([]model.Suggestion, error)
	sources    []sourceFunc
	patterns   []model.MerchantPattern
	cfg        Config
	classifier atomic.Pointer[classifier.Model]

	initGroup singleflight.Group
	ready     atomic.Bool
	tableMu   sync.RWMutex

	retrainMu     sync.Mutex
	lastRetrainMu sync.Mutex
	lastRetrain   time.Time
}

// New creates a categorization engine with default configuration.
func New(store service.Storage) *Engine {
	return NewWithConfig(store, DefaultConfig())
}

// NewWithConfig creates a categorization engine with custom configuration.
func NewWithConfig(store service.Storage, cfg Config) *Engine {
	e := &Engine{
		store: store,
		cfg:   cfg,
		rules: make(map[int][]model.DefaultRule),
	}
	e.rankFn = rankSuggestions
	e.sources = []sourceFunc{
		e.merchantPatternSource,
		e.defaultRuleSource,
		e.classifierSource,
		e.userHistorySource,
	}
	return e
}

// SuggestCategory returns up to three ranked category suggestions for a
// transaction. It never returns an error: an unexpected pipeline failure
// yields the single fallback suggestion, while zero matching sources yield a
// legitimately empty list. Callers must treat the two distinctly.
func (e *Engine) SuggestCategory(ctx context.Context, description string, amount float64, transactionTypeID int, userID string) []model.Suggestion {
	suggestions, err := e.suggest(ctx, description, amount, transactionTypeID, userID)
	if err != nil {
		slog.Error("Suggestion pipeline degraded, returning fallback",
			"description_length", len(description),
			"error", err)
		return []model.Suggestion{model.FallbackSuggestion()}
	}
	return suggestions
}

func (e *Engine) suggest(ctx context.Context, description string, amount float64, transactionTypeID int, userID string) ([]model.Suggestion, error) {
	if err := e.ensureInit(ctx); err != nil {
		return nil, fmt.Errorf("engine initialization failed: %w", err)
	}

	req := &request{
		description:       description,
		descLower:         strings.ToLower(strings.TrimSpace(description)),
		amount:            amount,
		transactionTypeID: transactionTypeID,
		userID:            userID,
	}

	var all []model.Suggestion
	for _, source := range e.sources {
		all = append(all, source(ctx, req)...)
	}

	ranked, err := e.rankFn(all)
	if err != nil {
		return nil, fmt.Errorf("ranking failed: %w", err)
	}
	return ranked, nil
}

// ensureInit loads the pattern and rule tables and trains the initial
// classifier, at most once per process. Concurrent first calls await the
// same load via singleflight; a failed initialization is retried by the next
// caller.
func (e *Engine) ensureInit(ctx context.Context) error {
	if e.ready.Load() {
		return nil
	}

	_, err, _ := e.initGroup.Do("init", func() (any, error) {
		if e.ready.Load() {
			return nil, nil
		}

		if err := e.reloadPatterns(ctx); err != nil {
			return nil, fmt.Errorf("failed to load merchant patterns: %w", err)
		}
		if err := e.loadRules(ctx); err != nil {
			return nil, fmt.Errorf("failed to load default rules: %w", err)
		}

		// Best effort: without a trained classifier the engine still runs in
		// rule-only mode.
		e.trainInitialClassifier(ctx)

		e.ready.Store(true)
		slog.Info("Categorization engine initialized",
			"patterns", e.patternCount(),
			"rule_types", len(e.rules),
			"classifier", e.classifier.Load() != nil)
		return nil, nil
	})
	return err
}

func (e *Engine) reloadPatterns(ctx context.Context) error {
	patterns, err := e.store.LoadMerchantPatterns(ctx)
	if err != nil {
		return err
	}

	e.tableMu.Lock()
	e.patterns = patterns
	e.tableMu.Unlock()
	return nil
}

func (e *Engine) loadRules(ctx context.Context) error {
	rules, err := e.store.LoadDefaultRules(ctx)
	if err != nil {
		return err
	}

	index := make(map[int][]model.DefaultRule)
	for _, rule := range rules {
		index[rule.TransactionTypeID] = append(index[rule.TransactionTypeID], rule)
	}

	e.tableMu.Lock()
	e.rules = index
	e.tableMu.Unlock()
	return nil
}

func (e *Engine) trainInitialClassifier(ctx context.Context) {
	transactions, err := e.store.LoadHistoricalTransactions(ctx, e.cfg.BulkTrainingLimit)
	if err != nil {
		slog.Warn("Failed to load historical transactions for initial training", "error", err)
		return
	}

	samples := make([]model.TrainingSample, 0, len(transactions))
	for _, txn := range transactions {
		samples = append(samples, model.TrainingSample{
			Description:       txn.Description,
			Category:          txn.Category,
			Amount:            txn.Amount,
			TransactionTypeID: txn.TransactionTypeID,
		})
	}

	m, err := classifier.Train(samples)
	if err != nil {
		slog.Warn("Initial classifier training failed, running rule-only", "error", err)
		return
	}
	if m == nil {
		return
	}

	e.classifier.Store(m)
	slog.Info("Trained initial classifier",
		"samples", m.SampleCount(),
		"categories", len(m.Categories()))
}

func (e *Engine) patternCount() int {
	e.tableMu.RLock()
	defer e.tableMu.RUnlock()
	return len(e.patterns)
}

func (e *Engine) lastRetrainTime() time.Time {
	e.lastRetrainMu.Lock()
	defer e.lastRetrainMu.Unlock()
	return e.lastRetrain
}

func (e *Engine) setLastRetrain(t time.Time) {
	e.lastRetrainMu.Lock()
	e.lastRetrain = t
	e.lastRetrainMu.Unlock()
}
