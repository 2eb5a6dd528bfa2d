package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kashhq/kash/internal/model"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage learned merchant patterns",
	}

	cmd.AddCommand(patternsListCmd())
	cmd.AddCommand(patternsAddCmd())
	cmd.AddCommand(patternsDeleteCmd())

	return cmd
}

func patternsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List merchant patterns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			patterns, err := store.LoadMerchantPatterns(ctx)
			if err != nil {
				return fmt.Errorf("loading merchant patterns: %w", err)
			}
			if len(patterns) == 0 {
				fmt.Println("No merchant patterns.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATTERN\tCATEGORY\tCONFIDENCE\tUSAGE")
			for _, p := range patterns {
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\n", p.Pattern, p.Category, p.ConfidenceScore, p.UsageCount)
			}
			return w.Flush()
		},
	}
}

func patternsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <pattern> <category>",
		Short: "Add or update a merchant pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			confidence, _ := cmd.Flags().GetFloat64("confidence")

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			pattern := &model.MerchantPattern{
				Pattern:         strings.ToUpper(args[0]),
				Category:        args[1],
				ConfidenceScore: confidence,
				UsageCount:      1,
			}
			if err := store.UpsertMerchantPattern(ctx, pattern); err != nil {
				return fmt.Errorf("saving merchant pattern: %w", err)
			}
			fmt.Printf("Saved pattern %s -> %s\n", pattern.Pattern, pattern.Category)
			return nil
		},
	}

	cmd.Flags().Float64("confidence", 0.7, "confidence score for the pattern")

	return cmd
}

func patternsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <pattern>",
		Short: "Delete a merchant pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			pattern := strings.ToUpper(args[0])
			if err := store.DeleteMerchantPattern(ctx, pattern); err != nil {
				return fmt.Errorf("deleting merchant pattern: %w", err)
			}
			fmt.Printf("Deleted pattern %s\n", pattern)
			return nil
		},
	}
}
