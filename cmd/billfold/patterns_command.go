package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/extraction"
)

func newPatternsCommand() *cobra.Command {
	patternsCmd := &cobra.Command{
		Use:         "patterns",
		Short:       "Build and dry-run extraction patterns",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	patternsCmd.AddCommand(newPatternsConvertCommand())
	patternsCmd.AddCommand(newPatternsTestCommand())

	return patternsCmd
}

func newPatternsConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <example>",
		Short: "Convert an example value into an extraction regex",
		Long: `Convert a literal example like "INV-2024-001" into a regular expression
that matches values of the same shape, suitable for extraction.patterns
entries in the configuration file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), extraction.ConvertExample(args[0]))
			return nil
		},
	}
}

func newPatternsTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test <pattern> <pdf-or-text>",
		Short: "Dry-run a pattern against a PDF or literal text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sample := args[1]
			if info, err := os.Stat(sample); err == nil && !info.IsDir() {
				text, err := extraction.ReadFirstPageText(sample)
				if err != nil {
					return fmt.Errorf("read %s: %w", filepath.Base(sample), err)
				}
				sample = text
			}

			report, err := extraction.TestPattern(args[0], sample)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pattern: %s\n", report.Pattern)
			if !report.HasCaptureGroup {
				fmt.Fprintln(out, "Warning: no capture group; extraction would use the full match")
			}
			if len(report.Matches) == 0 {
				fmt.Fprintln(out, "No matches")
				return nil
			}
			for i, m := range report.Matches {
				line := fmt.Sprintf("%d. %s", i+1, m.Match)
				if m.Captured != "" && m.Captured != m.Match {
					line += fmt.Sprintf(" (captured: %s)", m.Captured)
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
