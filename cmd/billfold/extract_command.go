package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/extraction"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var allMatches bool

	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Extract invoice fields from a PDF without queueing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if err := extraction.ValidateFile(absPath, cfg.MaxFileSizeBytes()); err != nil {
				return err
			}

			text, err := extraction.ReadFirstPageText(absPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", filepath.Base(absPath), err)
			}

			parser, err := extraction.NewParser(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if allMatches {
				matches := parser.AllMatches(text)
				rows := make([][]string, 0, len(matches))
				for _, field := range extraction.FieldKeys() {
					values := matches[field]
					if len(values) == 0 {
						rows = append(rows, []string{formatStatusLabel(field), "-"})
						continue
					}
					for _, value := range values {
						rows = append(rows, []string{formatStatusLabel(field), value})
					}
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Field", "Match"},
					rows,
					[]columnAlignment{alignLeft, alignLeft},
				))
				return nil
			}

			fields := parser.Parse(text)
			rows := [][]string{
				{"Company", valueOrDash(fields.Company)},
				{"Invoice", valueOrDash(fields.InvoiceNumber)},
				{"GST", valueOrDash(fields.GSTNumber)},
				{"Amount", valueOrDash(fields.Amount)},
				{"Date", valueOrDash(fields.InvoiceDate)},
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			if !fields.Complete() {
				fmt.Fprintf(out, "Missing: %s\n", strings.Join(fields.Missing(), ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allMatches, "all-matches", false, "Show every pattern match per field instead of the first")
	return cmd
}
