package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func retrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retrain",
		Short: "Retrain the classifier from accumulated feedback",
		Long: `Retrain the naive-bayes classifier from the verified training corpus.
Skips the run when too little new feedback has accumulated or the corpus
is still too small.`,
		RunE: runRetrain,
	}
}

func runRetrain(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	eng.Retrain(ctx)
	fmt.Println("Retrain pass complete.")
	return nil
}
