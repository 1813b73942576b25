package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to point paths.inbox_dir and paths.library_dir at your directories before running billfoldd.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolvedPath, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", resolvedPath)
			if !exists {
				fmt.Fprintln(out, "Config file does not exist; showing defaults")
			}

			detail := func(label string, value any) {
				fmt.Fprintf(out, "  %-22s %v\n", label+":", value)
			}

			fmt.Fprintln(out, "Paths:")
			detail("Inbox", cfg.Paths.InboxDir)
			detail("Staging", cfg.Paths.StagingDir)
			detail("Library", cfg.Paths.LibraryDir)
			detail("Review", cfg.Paths.ReviewDir)
			detail("Logs", cfg.Paths.LogDir)

			fmt.Fprintln(out, "Organizer:")
			detail("Conflict mode", cfg.Organizer.ConflictMode)
			detail("Remove after filing", yesNo(cfg.Organizer.RemoveSourceAfterFiling))
			detail("Amount in filename", yesNo(cfg.Organizer.AmountInFilename))

			fmt.Fprintln(out, "Extraction:")
			detail("Max file size", fmt.Sprintf("%d MB", cfg.Extraction.MaxFileSizeMB))
			detail("Pattern overrides", len(cfg.Extraction.Patterns))
			detail("GST mappings", len(cfg.Extraction.GSTCompanyMappings))

			fmt.Fprintln(out, "Notifications:")
			detail("Topic configured", yesNo(strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""))

			fmt.Fprintln(out, "Workflow:")
			detail("Queue poll interval", fmt.Sprintf("%ds", cfg.Workflow.QueuePollInterval))
			detail("Inbox poll interval", fmt.Sprintf("%ds", cfg.Workflow.InboxPollInterval))
			detail("Inbox min file age", fmt.Sprintf("%ds", cfg.Workflow.InboxMinFileAge))

			fmt.Fprintln(out, "Logging:")
			detail("Format", cfg.Logging.Format)
			detail("Level", cfg.Logging.Level)
			detail("Retention", fmt.Sprintf("%d days", cfg.Logging.RetentionDays))

			return nil
		},
	}
}
