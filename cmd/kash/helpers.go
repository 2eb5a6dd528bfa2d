package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/kashhq/kash/internal/common"
	"github.com/kashhq/kash/internal/engine"
	"github.com/kashhq/kash/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/kash/kash.db"
	}

	store, err := storage.NewSQLiteStorage(expandPath(dbPath))
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("failed to open database at %s", dbPath), err)
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initEngine builds a categorization engine over the configured store.
func initEngine(ctx context.Context) (*engine.Engine, *storage.SQLiteStorage, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, nil, err
	}

	cfg := engine.DefaultConfig()
	for key, dst := range map[string]*int{
		"retrain.min_feedback": &cfg.RetrainMinFeedback,
		"retrain.min_corpus":   &cfg.RetrainMinCorpus,
	} {
		if !viper.IsSet(key) {
			continue
		}
		v := viper.GetInt(key)
		if v <= 0 {
			_ = store.Close()
			return nil, nil, fmt.Errorf("%w: %s must be positive, got %d", common.ErrInvalidConfig, key, v)
		}
		*dst = v
	}
	if v := viper.GetInt("history.timeout_ms"); v > 0 {
		cfg.HistoryTimeout = time.Duration(v) * time.Millisecond
	}

	return engine.NewWithConfig(store, cfg), store, nil
}

// expandPath expands a leading ~ and $VAR style environment variables.
func expandPath(path string) string {
	if after, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, after)
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
