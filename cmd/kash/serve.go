package main

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kashhq/kash/internal/common"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine with scheduled retraining",
		Long: `Run the engine as a long-lived process with retraining on a cron
schedule. The schedule is configurable via retrain.schedule (default @hourly).`,
		RunE: runServe,
	}

	cmd.Flags().String("schedule", "", "cron schedule for retraining (overrides config)")
	_ = viper.BindPFlag("retrain.schedule", cmd.Flags().Lookup("schedule"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	schedule := viper.GetString("retrain.schedule")
	if schedule == "" {
		schedule = "@hourly"
	}

	c := cron.New()
	_, err = c.AddFunc(schedule, func() {
		eng.Retrain(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid retrain schedule %q: %w", schedule, err)
	}

	c.Start()
	common.LogInfo("Retrain scheduler started", common.Fields{"schedule": schedule})

	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	common.LogInfo("Retrain scheduler stopped", nil)
	return nil
}
