/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agrocoop/farmdesk/internal/mq"
	"github.com/agrocoop/farmdesk/types"
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Log record change events",
	Long: `Subscribes to the record events channel and logs every farmer, product
and need change until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		backend, err := mq.New(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if backend == nil {
			return errors.New("no mq backend configured")
		}
		events := mq.NewEvents(backend, cfg.MQ.Channel, logger)
		defer events.Close()

		logger.Info("listening for record events", "backend", cfg.MQ.Backend, "channel", cfg.MQ.Channel)
		err = events.ConsumeRecordEvents(ctx, func(ctx context.Context, event types.RecordEvent) error {
			logger.InfoContext(ctx, "record event",
				"entity", event.Entity,
				"action", event.Action,
				"id", event.ID,
				"farmer_id", event.FarmerID,
				"occurred_at", event.OccurredAt,
			)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
