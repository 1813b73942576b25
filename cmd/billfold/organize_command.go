package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/logging"
	"github.com/billfold/billfold/internal/notifications"
	"github.com/billfold/billfold/internal/organizer"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var destFlag string
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "organize <file>...",
		Short: "Copy files into a destination directory with conflict handling",
		Long: `Copy the given files into a destination directory, resolving name
conflicts per the configured mode: skip (default), overwrite, or auto-rename.
Each file is copied independently; one failure never aborts the run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			destDir := strings.TrimSpace(destFlag)
			if destDir == "" {
				destDir = cfg.Paths.LibraryDir
			}
			destDir, err = config.ExpandPath(destDir)
			if err != nil {
				return fmt.Errorf("resolve destination: %w", err)
			}
			if destDir == "" {
				return fmt.Errorf("no destination directory; pass --dest or set paths.library_dir")
			}
			if err := os.MkdirAll(destDir, 0o755); err != nil {
				return fmt.Errorf("create destination %q: %w", destDir, err)
			}

			mode := strings.TrimSpace(modeFlag)
			if mode == "" {
				mode = cfg.Organizer.ConflictMode
			}

			sources := make([]string, 0, len(args))
			for _, arg := range args {
				abs, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("resolve path %q: %w", arg, err)
				}
				sources = append(sources, abs)
			}

			job := organizer.Job{
				Sources: sources,
				DestDir: destDir,
				Mode:    organizer.ParseConflictMode(mode),
				Renamer: organizer.RenamerFunc(organizer.NextAvailable),
			}

			out := cmd.OutOrStdout()
			run := organizer.Start(cmd.Context(), logging.NewNop(), job)
			for ev := range run.Events() {
				switch ev.Kind {
				case organizer.EventStarted:
					fmt.Fprintf(out, "Organizing %d files into %s\n", len(sources), destDir)
				case organizer.EventCopied:
					fmt.Fprintf(out, "Copied %s -> %s\n", ev.Source, ev.Destination)
				case organizer.EventSkipped:
					fmt.Fprintf(out, "Skipped %s (%s)\n", ev.Source, ev.Reason)
				case organizer.EventFailed:
					fmt.Fprintln(out, ev.Message)
				}
			}
			result := run.Wait()

			fmt.Fprintf(out, "Done: %d copied, %d skipped, %d failed in %s\n",
				result.Copied, result.Skipped, len(result.Errors), result.Elapsed.Round(time.Millisecond))

			notifier := notifications.NewService(cfg)
			_ = notifier.NotifyOrganizeCompleted(cmd.Context(), result.Copied, len(result.Errors), result.Elapsed)

			if len(result.Errors) > 0 {
				return fmt.Errorf("%d of %d files failed", len(result.Errors), len(sources))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&destFlag, "dest", "", "Destination directory (defaults to paths.library_dir)")
	cmd.Flags().StringVar(&modeFlag, "mode", "", "Conflict mode: skip, overwrite, or auto-rename (defaults to organizer.conflict_mode)")
	return cmd
}
