package main

import (
	"fmt"

	"github.com/example/ec-storefront/internal/app"
	"github.com/spf13/cobra"
)

func newRebuildCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Replay the event store into the projected carts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			// Replays go straight to the projector; nothing is republished.
			cfg.Kafka.Brokers = nil

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Projector.Rebuild(cmd.Context(), a.EventStore)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "replayed %d events\n", n)
			return nil
		},
	}
}
