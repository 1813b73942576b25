package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/ipc"
	"github.com/billfold/billfold/internal/queue"
	"github.com/billfold/billfold/internal/queueaccess"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "List and resolve invoices parked for manual review",
	}

	reviewCmd.AddCommand(newReviewListCommand(ctx))
	reviewCmd.AddCommand(newReviewSetCommand(ctx))

	return reviewCmd
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List invoices awaiting manual review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				items, err := access.List(cmd.Context(), []string{string(queue.StatusReview)})
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No items awaiting review")
					return nil
				}
				sorted := buildReviewRows(items)
				table := renderTable(
					[]string{"ID", "File", "Reason", "Created"},
					sorted,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}
}

func newReviewSetCommand(ctx *commandContext) *cobra.Command {
	var (
		company       string
		invoiceNumber string
		gstNumber     string
		amount        string
		invoiceDate   string
		requeue       bool
	)

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Apply field corrections to a parked invoice",
		Long: `Apply manual field corrections to a queue item. Only the flags you pass
change stored values. With --requeue the item moves to ready_to_file so the
filing lane picks it up with the corrected fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parsePositiveIDs(args)
			if err != nil {
				return err
			}

			req := ipc.ReviewUpdateRequest{ID: ids[0], Requeue: requeue}
			flags := cmd.Flags()
			if flags.Changed("company") {
				req.CompanyName = &company
			}
			if flags.Changed("invoice-number") {
				req.InvoiceNumber = &invoiceNumber
			}
			if flags.Changed("gst") {
				req.GSTNumber = &gstNumber
			}
			if flags.Changed("amount") {
				req.Amount = &amount
			}
			if flags.Changed("date") {
				req.InvoiceDate = &invoiceDate
			}

			if req.CompanyName == nil && req.InvoiceNumber == nil && req.GSTNumber == nil &&
				req.Amount == nil && req.InvoiceDate == nil && !requeue {
				return fmt.Errorf("nothing to update; pass at least one field flag or --requeue")
			}

			return ctx.withQueueAccess(func(access queueaccess.Access) error {
				item, requeued, err := access.ReviewUpdate(cmd.Context(), req)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if item == nil {
					fmt.Fprintf(out, "Item %d not found\n", ids[0])
					return nil
				}
				if requeued {
					fmt.Fprintf(out, "Item %d updated and queued for filing\n", item.ID)
				} else {
					fmt.Fprintf(out, "Item %d updated\n", item.ID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "Corrected company name")
	cmd.Flags().StringVar(&invoiceNumber, "invoice-number", "", "Corrected invoice number")
	cmd.Flags().StringVar(&gstNumber, "gst", "", "Corrected GST number")
	cmd.Flags().StringVar(&amount, "amount", "", "Corrected amount")
	cmd.Flags().StringVar(&invoiceDate, "date", "", "Corrected invoice date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&requeue, "requeue", false, "Move the item to ready_to_file after applying corrections")
	return cmd
}
