package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/inbox"
	"github.com/billfold/billfold/internal/logging"
	"github.com/billfold/billfold/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>",
		Short: "Add a PDF invoice to the processing queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}
			if ext := strings.ToLower(filepath.Ext(info.Name())); ext != ".pdf" {
				return fmt.Errorf("unsupported file extension %q (only .pdf is accepted)", ext)
			}

			out := cmd.OutOrStdout()
			base := filepath.Base(absPath)

			// Prefer the daemon so staging happens under its lock; fall back
			// to ingesting directly when it is down.
			if client, err := ctx.dialClient(); err == nil {
				defer client.Close()
				resp, err := client.AddFile(absPath)
				if err != nil {
					return err
				}
				if resp == nil {
					return errors.New("empty response from daemon")
				}
				if resp.AlreadyQueued {
					fmt.Fprintf(out, "Invoice already queued as item #%d (%s)\n", resp.Item.ID, base)
				} else {
					fmt.Fprintf(out, "Queued invoice as item #%d (%s)\n", resp.Item.ID, base)
				}
				return nil
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			ingestor := inbox.NewIngestor(cfg, store, logging.NewNop())
			item, created, err := ingestor.Ingest(cmd.Context(), absPath)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(out, "Queued invoice as item #%d (%s)\n", item.ID, base)
			} else {
				fmt.Fprintf(out, "Invoice already queued as item #%d (%s)\n", item.ID, base)
			}
			return nil
		},
	}
}
