package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/flexprice/recurly-client/internal/recurly"
	"github.com/flexprice/recurly-client/internal/s3"
	"github.com/h2non/filetype"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
)

var (
	listState string

	pdfOutput  string
	pdfArchive bool

	refundAmount         int64
	refundMethod         string
	refundExternal       bool
	refundPaymentMethod  string
	refundDescription    string
	refundCustomerNotes  string
	refundAdjustmentUUID []string

	markConcurrency int
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Inspect and update invoices",
}

var invoiceGetCmd = &cobra.Command{
	Use:   "get <invoice-number>",
	Short: "Show an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "invoice.get", func(ctx context.Context, d *deps) error {
			inv, err := d.Client.GetInvoice(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), inv)
		})
	},
}

var invoiceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, optionally filtered by state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "invoice.list", func(ctx context.Context, d *deps) error {
			invoices, err := d.Client.ListInvoices(ctx, recurly.InvoiceState(listState))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), invoices)
		})
	},
}

var invoicePDFCmd = &cobra.Command{
	Use:   "pdf <invoice-number>",
	Short: "Download an invoice as PDF",
	Long: `Download an invoice as PDF.

Without -o the document is written to stdout. With --archive it is also
uploaded to the configured S3 bucket and a presigned link is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runPDF,
}

var invoiceRefundCmd = &cobra.Command{
	Use:   "refund <invoice-number>",
	Short: "Refund an invoice",
	Long: `Refund an invoice, either an open amount (--amount-in-cents) or whole
line items (--adjustment, repeatable). Without either the full invoice is
refunded.`,
	Args: cobra.ExactArgs(1),
	RunE: runRefund,
}

var invoiceMarkSuccessfulCmd = &cobra.Command{
	Use:   "mark-successful <invoice-number>...",
	Short: "Mark manual invoices as paid",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMark(cmd, args, "invoice.mark_successful", (*recurly.Invoice).MarkSuccessful)
	},
}

var invoiceMarkFailedCmd = &cobra.Command{
	Use:   "mark-failed <invoice-number>...",
	Short: "Mark manual invoices as failed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMark(cmd, args, "invoice.mark_failed", (*recurly.Invoice).MarkFailed)
	},
}

var invoiceAccountCmd = &cobra.Command{
	Use:   "account <invoice-number>",
	Short: "Show the account an invoice belongs to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "invoice.account", func(ctx context.Context, d *deps) error {
			inv, err := d.Client.GetInvoice(ctx, args[0])
			if err != nil {
				return err
			}
			acct, err := inv.FetchAccount(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), acct)
		})
	},
}

var invoiceSubscriptionsCmd = &cobra.Command{
	Use:   "subscriptions <invoice-number>",
	Short: "List the subscriptions billed on an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "invoice.subscriptions", func(ctx context.Context, d *deps) error {
			inv, err := d.Client.GetInvoice(ctx, args[0])
			if err != nil {
				return err
			}
			subs, err := inv.FetchSubscriptions(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), subs)
		})
	},
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(
		invoiceGetCmd,
		invoiceListCmd,
		invoicePDFCmd,
		invoiceRefundCmd,
		invoiceMarkSuccessfulCmd,
		invoiceMarkFailedCmd,
		invoiceAccountCmd,
		invoiceSubscriptionsCmd,
	)

	invoiceListCmd.Flags().StringVar(&listState, "state", "", "Only invoices in this state (open, pending, processing, collected, paid, failed, past_due)")

	invoicePDFCmd.Flags().StringVarP(&pdfOutput, "output", "o", "", "Output file (default: stdout)")
	invoicePDFCmd.Flags().BoolVar(&pdfArchive, "archive", false, "Upload the PDF to the S3 archive")

	invoiceRefundCmd.Flags().Int64Var(&refundAmount, "amount-in-cents", 0, "Open amount to refund")
	invoiceRefundCmd.Flags().StringVar(&refundMethod, "refund-method", "", "credit_first, transaction_first, all_credit or all_transaction")
	invoiceRefundCmd.Flags().BoolVar(&refundExternal, "external-refund", false, "Record a refund made outside the billing api")
	invoiceRefundCmd.Flags().StringVar(&refundPaymentMethod, "payment-method", "", "Payment method of an external refund")
	invoiceRefundCmd.Flags().StringVar(&refundDescription, "description", "", "Description of an external refund")
	invoiceRefundCmd.Flags().StringVar(&refundCustomerNotes, "credit-customer-notes", "", "Notes shown on the credit invoice")
	invoiceRefundCmd.Flags().StringSliceVar(&refundAdjustmentUUID, "adjustment", nil, "Adjustment to refund as uuid or uuid:quantity (repeatable)")

	for _, c := range []*cobra.Command{invoiceMarkSuccessfulCmd, invoiceMarkFailedCmd} {
		c.Flags().IntVar(&markConcurrency, "concurrency", 4, "Invoices updated in parallel")
	}
}

func runPDF(cmd *cobra.Command, args []string) error {
	return withApp(cmd, "invoice.pdf", func(ctx context.Context, d *deps) error {
		inv, err := d.Client.GetInvoice(ctx, args[0])
		if err != nil {
			return err
		}

		pdf, err := inv.FetchPDF(ctx)
		if err != nil {
			return err
		}
		if !filetype.Is(pdf, "pdf") {
			return fmt.Errorf("invoice %s: response is not a pdf document", args[0])
		}

		if pdfArchive {
			if d.Archive == nil {
				return fmt.Errorf("--archive requires s3.enabled in the configuration")
			}
			if err := d.Archive.UploadDocument(ctx, s3.NewInvoicePDF(inv.InvoiceNumber, pdf)); err != nil {
				return err
			}
			url, err := d.Archive.GetPresignedUrl(ctx, inv.InvoiceNumber)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), url)
		}

		if pdfOutput == "" {
			_, err = cmd.OutOrStdout().Write(pdf)
			return err
		}
		return os.WriteFile(pdfOutput, pdf, 0o644)
	})
}

func refundOptions(cmd *cobra.Command) (*recurly.RefundOptions, error) {
	opts := &recurly.RefundOptions{
		RefundMethod:        recurly.RefundMethod(refundMethod),
		PaymentMethod:       refundPaymentMethod,
		Description:         refundDescription,
		CreditCustomerNotes: refundCustomerNotes,
	}
	if cmd.Flags().Changed("amount-in-cents") {
		opts.AmountInCents = lo.ToPtr(refundAmount)
	}
	if cmd.Flags().Changed("external-refund") {
		opts.ExternalRefund = lo.ToPtr(refundExternal)
	}
	for _, arg := range refundAdjustmentUUID {
		uuid, qty, found := strings.Cut(arg, ":")
		item := recurly.RefundLineItem{AdjustmentUUID: uuid, Quantity: 1}
		if found {
			n, err := strconv.Atoi(qty)
			if err != nil {
				return nil, fmt.Errorf("--adjustment %q: quantity must be a number", arg)
			}
			item.Quantity = n
		}
		opts.LineItems = append(opts.LineItems, item)
	}
	return opts, nil
}

func runRefund(cmd *cobra.Command, args []string) error {
	return withApp(cmd, "invoice.refund", func(ctx context.Context, d *deps) error {
		span, ctx := d.Sentry.StartCommandSpan(ctx, "invoice.refund", args[0])
		if span != nil {
			defer span.Finish()
		}

		opts, err := refundOptions(cmd)
		if err != nil {
			return err
		}

		inv := d.Client.NewInvoice()
		inv.InvoiceNumber = args[0]

		refunded, err := inv.Refund(ctx, opts)
		if err != nil {
			return err
		}
		d.Logger.Infow("refund issued", "refund", refunded.String())
		return printJSON(cmd.OutOrStdout(), refunded)
	})
}

// markResult is the outcome of one invoice in a batch mark
type markResult struct {
	InvoiceNumber string               `json:"invoice_number"`
	State         recurly.InvoiceState `json:"state,omitempty"`
	Error         string               `json:"error,omitempty"`
}

type markFunc func(inv *recurly.Invoice, ctx context.Context) (*recurly.Invoice, error)

func runMark(cmd *cobra.Command, numbers []string, name string, mark markFunc) error {
	return withApp(cmd, name, func(ctx context.Context, d *deps) error {
		p := pool.NewWithResults[markResult]().WithMaxGoroutines(max(markConcurrency, 1))

		// the same invoice must not be marked twice concurrently
		for _, number := range lo.Uniq(numbers) {
			p.Go(func() markResult {
				span, ctx := d.Sentry.StartCommandSpan(ctx, name, number)
				if span != nil {
					defer span.Finish()
				}

				inv := d.Client.NewInvoice()
				inv.InvoiceNumber = number

				res := markResult{InvoiceNumber: number}
				updated, err := mark(inv, ctx)
				if err != nil {
					d.Sentry.CaptureException(err)
					res.Error = err.Error()
					return res
				}
				res.State = updated.State
				return res
			})
		}

		results := p.Wait()
		sort.Slice(results, func(i, j int) bool {
			return results[i].InvoiceNumber < results[j].InvoiceNumber
		})

		if err := printJSON(cmd.OutOrStdout(), results); err != nil {
			return err
		}

		failed := lo.CountBy(results, func(r markResult) bool { return r.Error != "" })
		if failed > 0 {
			return fmt.Errorf("%d of %d invoices failed", failed, len(results))
		}
		return nil
	})
}
