package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/inbox"
	"github.com/billfold/billfold/internal/logging"
	"github.com/billfold/billfold/internal/queue"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Sweep the inbox once and queue any settled PDFs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			poller := inbox.NewPoller(cfg, store, logging.NewNop())
			queued, err := poller.ScanOnce(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if queued == 0 {
				fmt.Fprintf(out, "No new invoices found in %s\n", cfg.Paths.InboxDir)
				return nil
			}
			fmt.Fprintf(out, "Queued %d new invoices from %s\n", queued, cfg.Paths.InboxDir)
			return nil
		},
	}
}
