package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kashhq/kash/internal/common"
	"github.com/kashhq/kash/internal/model"
	"github.com/kashhq/kash/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.ofx|file.qfx> [...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import bank and credit card transactions from OFX/QFX export files.
Duplicate transactions are skipped by content hash.

Examples:
  kash import ~/Downloads/checking.ofx
  kash import exports/*.qfx --user alice`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("user", "u", "", "user ID to attach to imported transactions")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")

	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	files, err := expandGlobs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files matched")
	}

	parser := ofx.NewParser()
	bar := progressbar.Default(int64(len(files)), "importing")

	var total int
	for _, path := range files {
		transactions, err := parseOFXFile(parser, cmd, path)
		if err != nil {
			slog.Warn("skipping file", "path", path, "error", err)
			_ = bar.Add(1)
			continue
		}

		if userID != "" {
			for i := range transactions {
				transactions[i].UserID = userID
			}
		}

		// Retry around transient sqlite busy errors when another process
		// holds the write lock.
		err = common.WithRetry(ctx, func() error {
			return store.SaveTransactions(ctx, transactions)
		}, common.RetryOptions{MaxAttempts: 3, InitialDelay: 200 * time.Millisecond})
		if err != nil {
			return fmt.Errorf("saving transactions from %s: %w", path, err)
		}
		total += len(transactions)
		_ = bar.Add(1)
	}

	fmt.Printf("\nImported %d transactions from %d files.\n", total, len(files))
	return nil
}

func parseOFXFile(parser *ofx.Parser, cmd *cobra.Command, path string) ([]model.Transaction, error) {
	f, err := os.Open(expandPath(path))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(cmd.Context(), f)
}

// expandGlobs resolves shell-style patterns that the shell did not expand.
func expandGlobs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		matches, err := filepath.Glob(expandPath(arg))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			files = append(files, arg)
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}
