package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/api"
	"github.com/billfold/billfold/internal/queue"
	"github.com/billfold/billfold/internal/queueaccess"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and maintain the processing queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueDescribeCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))
	queueCmd.AddCommand(newQueueClearCompletedCommand(ctx))
	queueCmd.AddCommand(newQueueClearFailedCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueResetStuckCommand(ctx))
	queueCmd.AddCommand(newQueueHealthCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				items, err := access.List(cmd.Context(), statuses)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				rows := buildQueueListRows(items)
				if len(rows) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Company", "Invoice", "Amount", "Status", "Created"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newQueueDescribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <id>",
		Short: "Show the full record for one queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				item, err := access.Describe(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if item == nil {
					fmt.Fprintf(out, "Item %d not found\n", ids[0])
					return nil
				}
				printQueueItemDetail(out, *item)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				removed, err := access.ClearAll(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d queue items\n", removed)
				return nil
			})
		},
	}
}

func newQueueClearCompletedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Remove completed queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				removed, err := access.ClearCompleted(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed items\n", removed)
				return nil
			})
		},
	}
}

func newQueueClearFailedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-failed",
		Short: "Remove failed queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				removed, err := access.ClearFailed(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d failed items\n", removed)
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Retry failed queue items (all failed items when no IDs are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				out := cmd.OutOrStdout()
				if len(args) == 0 {
					updated, err := access.RetryAll(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Retried %d failed items\n", updated)
					return nil
				}

				ids, err := parsePositiveIDs(args)
				if err != nil {
					return err
				}
				_, err = retryByID(cmd.Context(), access, out, ids)
				return err
			})
		},
	}
}

func newQueueResetStuckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-stuck",
		Short: "Reset items stuck mid-stage back to their resumable status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				updated, err := access.ResetStuck(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d items\n", updated)
				return nil
			})
		},
	}
}

func newQueueHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show queue counts and database diagnostics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				summary, err := access.Health(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Total: %d\n", summary.Total)
				fmt.Fprintf(out, "Pending: %d\n", summary.Pending)
				fmt.Fprintf(out, "Processing: %d\n", summary.Processing)
				fmt.Fprintf(out, "Review: %d\n", summary.Review)
				fmt.Fprintf(out, "Failed: %d\n", summary.Failed)
				fmt.Fprintf(out, "Completed: %d\n", summary.Completed)

				db, err := access.DatabaseHealth(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprintf(out, "Database path: %s\n", db.DBPath)
				fmt.Fprintf(out, "Database exists: %s\n", yesNo(db.DatabaseExists))
				fmt.Fprintf(out, "Readable: %s\n", yesNo(db.DatabaseReadable))
				fmt.Fprintf(out, "Schema version: %s\n", db.SchemaVersion)
				fmt.Fprintf(out, "queue_items table present: %s\n", yesNo(db.TableExists))
				if len(db.ColumnsPresent) > 0 {
					cols := append([]string(nil), db.ColumnsPresent...)
					sort.Strings(cols)
					fmt.Fprintf(out, "Columns: %s\n", strings.Join(cols, ", "))
				}
				if len(db.MissingColumns) > 0 {
					missing := append([]string(nil), db.MissingColumns...)
					sort.Strings(missing)
					fmt.Fprintf(out, "Missing columns: %s\n", strings.Join(missing, ", "))
				} else {
					fmt.Fprintln(out, "Missing columns: none")
				}
				fmt.Fprintf(out, "Integrity check: %s\n", yesNo(db.IntegrityCheck))
				fmt.Fprintf(out, "Total items: %d\n", db.TotalItems)
				if db.Error != "" {
					fmt.Fprintf(out, "Error: %s\n", db.Error)
				}
				return nil
			})
		},
	}
}

// retryByID validates each ID before retrying so the operator learns which
// items were skipped and why. Works identically for IPC and store paths.
func retryByID(ctx context.Context, access queueaccess.Access, out io.Writer, ids []int64) (int64, error) {
	var updated int64
	for _, id := range ids {
		item, err := access.Describe(ctx, id)
		if err != nil {
			return updated, err
		}
		if item == nil {
			fmt.Fprintf(out, "Item %d not found\n", id)
			continue
		}
		if !statusIsRetryable(item.Status) {
			fmt.Fprintf(out, "Item %d is not in a retryable state (only failed items can be retried)\n", id)
			continue
		}
		n, err := access.Retry(ctx, []int64{id})
		if err != nil {
			return updated, err
		}
		if n > 0 {
			updated += n
			fmt.Fprintf(out, "Item %d reset for retry\n", id)
		} else {
			fmt.Fprintf(out, "Item %d is not in a retryable state (only failed items can be retried)\n", id)
		}
	}
	return updated, nil
}

func statusIsRetryable(value string) bool {
	status, ok := queue.ParseStatus(value)
	return ok && status == queue.StatusFailed
}

func printQueueItemDetail(out io.Writer, item api.QueueItem) {
	fmt.Fprintf(out, "Item %d\n", item.ID)
	detail := func(label, value string) {
		fmt.Fprintf(out, "  %-14s %s\n", label+":", value)
	}
	detail("Status", formatStatusLabel(item.Status))
	detail("Source", valueOrDash(item.SourcePath))
	detail("Staged", valueOrDash(item.StagedPath))
	detail("Fingerprint", formatFingerprint(item.Fingerprint))
	detail("Company", valueOrDash(item.CompanyName))
	detail("Invoice", valueOrDash(item.InvoiceNumber))
	detail("GST", valueOrDash(item.GSTNumber))
	detail("Amount", valueOrDash(item.Amount))
	detail("Date", valueOrDash(item.InvoiceDate))
	detail("Filed as", valueOrDash(item.FinalFile))
	if progress := formatProgress(item.Progress); progress != "" {
		detail("Progress", progress)
	}
	if strings.TrimSpace(item.ErrorMessage) != "" {
		detail("Error", item.ErrorMessage)
	}
	if item.NeedsReview {
		detail("Review", valueOrDash(item.ReviewReason))
	}
	detail("Created", formatDisplayTime(item.CreatedAt))
	detail("Updated", formatDisplayTime(item.UpdatedAt))
}

func formatProgress(p api.QueueProgress) string {
	stage := strings.TrimSpace(p.Stage)
	message := strings.TrimSpace(p.Message)
	if stage == "" && message == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(stage)
	if p.Percent > 0 {
		fmt.Fprintf(&b, " (%.0f%%)", p.Percent)
	}
	if message != "" {
		if b.Len() > 0 {
			b.WriteString(" - ")
		}
		b.WriteString(message)
	}
	return b.String()
}
