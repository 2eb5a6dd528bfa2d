package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kashhq/kash/internal/model"
)

func suggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <description>",
		Short: "Suggest categories for a transaction description",
		Long: `Suggest up to three spending categories for a raw transaction description.

Examples:
  kash suggest "STARBUCKS COFFEE #1234" --amount 5.50
  kash suggest "ACH DEPOSIT PAYROLL" --amount 2500 --type income
  kash suggest "UBER TRIP HELP.UBER.COM" --amount 23.40 --user alice`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSuggest,
	}

	cmd.Flags().Float64P("amount", "a", 0, "transaction amount")
	cmd.Flags().StringP("type", "t", "expense", "transaction type (expense, income, savings)")
	cmd.Flags().StringP("user", "u", "", "user ID for history-based matching")

	return cmd
}

func runSuggest(cmd *cobra.Command, args []string) error {
	amount, _ := cmd.Flags().GetFloat64("amount")
	typeName, _ := cmd.Flags().GetString("type")
	userID, _ := cmd.Flags().GetString("user")

	transactionType, err := parseTransactionType(typeName)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	description := strings.Join(args, " ")
	suggestions := eng.SuggestCategory(ctx, description, amount, transactionType, userID)

	if len(suggestions) == 0 {
		fmt.Println("No suggestions.")
		return nil
	}

	for i, s := range suggestions {
		fmt.Printf("%d. %-24s %.2f  (%s)\n", i+1, s.Category, s.Confidence, s.Source)
	}
	return nil
}

func parseTransactionType(name string) (int, error) {
	switch strings.ToLower(name) {
	case "expense":
		return model.TransactionTypeExpense, nil
	case "income":
		return model.TransactionTypeIncome, nil
	case "savings":
		return model.TransactionTypeSavings, nil
	default:
		return 0, fmt.Errorf("unknown transaction type %q (expense, income, savings)", name)
	}
}
