package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kashhq/kash/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage default categorization rules",
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active default rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.LoadDefaultRules(ctx)
			if err != nil {
				return fmt.Errorf("loading default rules: %w", err)
			}
			if len(rules) == 0 {
				fmt.Println("No default rules.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tVALUE\tCATEGORY\tCONFIDENCE\tTXN TYPE")
			for _, r := range rules {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f\t%s\n",
					r.ID, r.RuleType, r.RuleValue, r.Category, r.ConfidenceScore,
					transactionTypeName(r.TransactionTypeID))
			}
			return w.Flush()
		},
	}
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <value> <category>",
		Short: "Add or update a default rule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleType, _ := cmd.Flags().GetString("rule-type")
			confidence, _ := cmd.Flags().GetFloat64("confidence")
			typeName, _ := cmd.Flags().GetString("type")

			rt := model.RuleType(strings.ToLower(ruleType))
			if rt != model.RuleTypeKeyword && rt != model.RuleTypeMerchant {
				return fmt.Errorf("unknown rule type %q (keyword, merchant)", ruleType)
			}
			transactionType, err := parseTransactionType(typeName)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rule := &model.DefaultRule{
				RuleType:          rt,
				RuleValue:         strings.ToLower(args[0]),
				Category:          args[1],
				ConfidenceScore:   confidence,
				TransactionTypeID: transactionType,
			}
			if err := store.SaveDefaultRule(ctx, rule); err != nil {
				return fmt.Errorf("saving default rule: %w", err)
			}
			fmt.Printf("Saved rule %s:%s -> %s\n", rule.RuleType, rule.RuleValue, rule.Category)
			return nil
		},
	}

	cmd.Flags().String("rule-type", "keyword", "rule type (keyword, merchant)")
	cmd.Flags().Float64("confidence", 0.7, "confidence score for the rule")
	cmd.Flags().StringP("type", "t", "expense", "transaction type (expense, income, savings)")

	return cmd
}

func transactionTypeName(id int) string {
	switch id {
	case model.TransactionTypeExpense:
		return "expense"
	case model.TransactionTypeIncome:
		return "income"
	case model.TransactionTypeSavings:
		return "savings"
	default:
		return fmt.Sprintf("type-%d", id)
	}
}
