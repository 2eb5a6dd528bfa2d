package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kashhq/kash/internal/model"
)

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback <description>",
		Short: "Record a category correction or confirmation",
		Long: `Record user feedback on a suggestion. The engine audits the feedback,
reinforces merchant patterns on corrections, and grows the training corpus.

Examples:
  kash feedback "STARBUCKS COFFEE #1234" --suggested "Dining Out" --actual "Coffee Shops"
  kash feedback "NETFLIX.COM" --suggested Subscriptions --actual Subscriptions --accepted`,
		Args: cobra.MinimumNArgs(1),
		RunE: runFeedback,
	}

	cmd.Flags().String("suggested", "", "category the engine suggested")
	cmd.Flags().String("actual", "", "category the user chose (required)")
	cmd.Flags().Float64("confidence", 0, "confidence of the original suggestion")
	cmd.Flags().Float64P("amount", "a", 0, "transaction amount")
	cmd.Flags().StringP("user", "u", "", "user ID")
	cmd.Flags().Bool("accepted", false, "the suggestion was accepted as-is")
	_ = cmd.MarkFlagRequired("actual")

	return cmd
}

func runFeedback(cmd *cobra.Command, args []string) error {
	suggested, _ := cmd.Flags().GetString("suggested")
	actual, _ := cmd.Flags().GetString("actual")
	confidence, _ := cmd.Flags().GetFloat64("confidence")
	userID, _ := cmd.Flags().GetString("user")
	accepted, _ := cmd.Flags().GetBool("accepted")

	ctx := cmd.Context()
	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	fb := model.Feedback{
		UserID:            userID,
		Description:       strings.Join(args, " "),
		SuggestedCategory: suggested,
		ActualCategory:    actual,
		Confidence:        confidence,
		WasAccepted:       accepted,
	}
	if cmd.Flags().Changed("amount") {
		amount, _ := cmd.Flags().GetFloat64("amount")
		fb.Amount = &amount
	}

	eng.RecordFeedback(ctx, fb)
	fmt.Printf("Recorded feedback for %q -> %s\n", fb.Description, actual)
	return nil
}
