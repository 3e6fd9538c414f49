package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/invoicedesk/idesk/internal/cli/output"
	"github.com/invoicedesk/idesk/internal/models"
	"github.com/invoicedesk/idesk/internal/store"
)

func newInvoicesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Manage invoices and their lifecycle",
	}
	cmd.AddCommand(
		newInvoicesListCmd(app),
		newInvoicesGetCmd(app),
		newInvoicesCreateCmd(app),
		newInvoicesUpdateCmd(app),
		newInvoicesDeleteCmd(app),
		newInvoicesSendCmd(app),
		newInvoicesCancelCmd(app),
		newInvoicesDuplicateCmd(app),
		newInvoicesPayCmd(app),
		newInvoicesPDFCmd(app),
		newInvoicesExportCmd(app),
	)
	return cmd
}

func invoiceRow(inv models.Invoice) []string {
	return []string{
		inv.ID,
		inv.Number,
		inv.ClientID,
		string(inv.Status),
		fmt.Sprintf("%.2f %s", inv.Total, inv.Currency),
		inv.DueDate.Format("2006-01-02"),
	}
}

var invoiceHeaders = []string{"ID", "NUMBER", "CLIENT", "STATUS", "TOTAL", "DUE"}

func newInvoicesListCmd(app *App) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Invoices.Fetch(cmd.Context(), flags.params()); err != nil {
				return renderError(err)
			}

			items := app.Invoices.Cache.Items()
			rows := make([][]string, 0, len(items))
			for _, inv := range items {
				rows = append(rows, invoiceRow(inv))
			}

			if err := app.render(&output.TableData{Headers: invoiceHeaders, Rows: rows}, items); err != nil {
				return err
			}
			fmt.Fprintln(app.out, pageFooter(app.Invoices.Cache.Pagination()))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newInvoicesGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := app.Invoices.FetchOne(cmd.Context(), args[0])
			if err != nil {
				return renderError(err)
			}
			if err := app.render(&output.TableData{Headers: invoiceHeaders, Rows: [][]string{invoiceRow(*inv)}}, inv); err != nil {
				return err
			}
			if outputFormat == string(output.FormatTable) && len(inv.Items) > 0 {
				rows := make([][]string, 0, len(inv.Items))
				for _, it := range inv.Items {
					rows = append(rows, []string{it.Description, fmt.Sprintf("%g", it.Quantity), fmt.Sprintf("%.2f", it.UnitPrice), fmt.Sprintf("%.2f", it.Total)})
				}
				return app.render(&output.TableData{
					Headers: []string{"DESCRIPTION", "QTY", "PRICE", "TOTAL"},
					Rows:    rows,
				}, inv.Items)
			}
			return nil
		},
	}
}

func newInvoicesCreateCmd(app *App) *cobra.Command {
	var (
		clientID string
		dueIn    int
		currency string
		taxRate  float64
		items    []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft invoice",
		Long:  "Create a draft invoice. Lines are given as repeated --item flags\nin the form \"description:quantity:unitPrice\".",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID == "" {
				return fmt.Errorf("--client is required")
			}
			if len(items) == 0 {
				return fmt.Errorf("at least one --item is required")
			}

			lines := make([]models.InvoiceItem, 0, len(items))
			for _, raw := range items {
				line, err := parseInvoiceItem(raw)
				if err != nil {
					return err
				}
				lines = append(lines, line)
			}

			now := time.Now()
			inv, err := app.Invoices.Create(cmd.Context(), models.InvoiceInput{
				ClientID:  clientID,
				IssueDate: now,
				DueDate:   now.AddDate(0, 0, dueIn),
				Items:     lines,
				Currency:  currency,
				TaxRate:   taxRate,
			})
			if err != nil {
				return renderError(err)
			}
			fmt.Fprintf(app.out, "Created invoice %s (%s), total %.2f %s\n", inv.Number, inv.ID, inv.Total, inv.Currency)
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client id")
	cmd.Flags().IntVar(&dueIn, "due-in", 30, "days until the invoice is due")
	cmd.Flags().StringVar(&currency, "currency", "EUR", "invoice currency")
	cmd.Flags().Float64Var(&taxRate, "tax", 0, "tax rate in percent")
	cmd.Flags().StringArrayVar(&items, "item", nil, `invoice line as "description:quantity:unitPrice"`)
	return cmd
}

func newInvoicesUpdateCmd(app *App) *cobra.Command {
	var (
		version  int64
		dueIn    int
		currency string
		taxRate  float64
		notes    string
		items    []string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a draft invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := app.Invoices.FetchOne(cmd.Context(), args[0])
			if err != nil {
				return renderError(err)
			}
			if version == 0 {
				version = current.Version
			}

			in := models.InvoiceInput{
				ClientID:  current.ClientID,
				IssueDate: current.IssueDate,
				DueDate:   current.DueDate,
				Items:     current.Items,
				Currency:  current.Currency,
				TaxRate:   current.TaxRate,
			}
			if cmd.Flags().Changed("due-in") {
				in.DueDate = current.IssueDate.AddDate(0, 0, dueIn)
			}
			if cmd.Flags().Changed("currency") {
				in.Currency = currency
			}
			if cmd.Flags().Changed("tax") {
				in.TaxRate = taxRate
			}
			if cmd.Flags().Changed("notes") {
				in.Notes = notes
			}
			if len(items) > 0 {
				lines := make([]models.InvoiceItem, 0, len(items))
				for _, raw := range items {
					line, err := parseInvoiceItem(raw)
					if err != nil {
						return err
					}
					lines = append(lines, line)
				}
				in.Items = lines
			}

			inv, err := app.Invoices.Update(cmd.Context(), args[0], version, in)
			if err != nil {
				return renderError(err)
			}
			fmt.Fprintf(app.out, "Updated invoice %s (version %d), total %.2f %s\n", inv.Number, inv.Version, inv.Total, inv.Currency)
			return nil
		},
	}
	cmd.Flags().Int64Var(&version, "version", 0, "expected record version (taken from the fetched invoice when omitted)")
	cmd.Flags().IntVar(&dueIn, "due-in", 30, "days until the invoice is due, counted from the issue date")
	cmd.Flags().StringVar(&currency, "currency", "", "invoice currency")
	cmd.Flags().Float64Var(&taxRate, "tax", 0, "tax rate in percent")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringArrayVar(&items, "item", nil, `replacement invoice line as "description:quantity:unitPrice"`)
	return cmd
}

// parseInvoiceItem parses "description:quantity:unitPrice".
func parseInvoiceItem(raw string) (models.InvoiceItem, error) {
	var item models.InvoiceItem

	desc, rest, ok := cutLast2(raw)
	if !ok {
		return item, fmt.Errorf("invalid --item %q, expected description:quantity:unitPrice", raw)
	}
	qty, err := strconv.ParseFloat(rest[0], 64)
	if err != nil {
		return item, fmt.Errorf("invalid quantity in --item %q", raw)
	}
	price, err := strconv.ParseFloat(rest[1], 64)
	if err != nil {
		return item, fmt.Errorf("invalid unit price in --item %q", raw)
	}

	item.Description = desc
	item.Quantity = qty
	item.UnitPrice = price
	item.Total = qty * price
	return item, nil
}

// cutLast2 splits raw at its last two colons so descriptions may contain
// colons themselves.
func cutLast2(raw string) (string, [2]string, bool) {
	last := strings.LastIndex(raw, ":")
	if last <= 0 {
		return "", [2]string{}, false
	}
	secondLast := strings.LastIndex(raw[:last], ":")
	if secondLast <= 0 {
		return "", [2]string{}, false
	}
	return raw[:secondLast], [2]string{raw[secondLast+1 : last], raw[last+1:]}, true
}

func newInvoicesDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a draft invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.UI.RequestConfirmation(store.Confirmation{
				Action:  "invoices.delete",
				Title:   "Delete invoice",
				Message: fmt.Sprintf("Delete invoice %s?", args[0]),
				Args:    map[string]string{"id": args[0]},
			})

			if !yes {
				pending, _ := app.UI.Pending()
				ok, err := Confirm(app.reader, pending.Message, app.out)
				if err != nil {
					return err
				}
				if !ok {
					app.UI.Dismiss()
					fmt.Fprintln(app.out, "Cancelled")
					return nil
				}
			}

			if err := app.UI.Confirm(cmd.Context()); err != nil {
				return renderError(err)
			}
			fmt.Fprintf(app.out, "Deleted invoice %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newInvoicesSendCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "send <id>",
		Short: "Send an invoice to the client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := app.Invoices.Send(cmd.Context(), args[0])
			if err != nil {
				return renderError(err)
			}
			fmt.Fprintf(app.out, "Invoice %s is now %s\n", inv.Number, inv.Status)
			return nil
		},
	}
}

func newInvoicesCancelCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Void an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.UI.RequestConfirmation(store.Confirmation{
				Action:  "invoices.cancel",
				Title:   "Cancel invoice",
				Message: fmt.Sprintf("Cancel invoice %s? This cannot be undone.", args[0]),
				Args:    map[string]string{"id": args[0]},
			})

			if !yes {
				pending, _ := app.UI.Pending()
				ok, err := Confirm(app.reader, pending.Message, app.out)
				if err != nil {
					return err
				}
				if !ok {
					app.UI.Dismiss()
					fmt.Fprintln(app.out, "Cancelled")
					return nil
				}
			}

			if err := app.UI.Confirm(cmd.Context()); err != nil {
				return renderError(err)
			}
			fmt.Fprintf(app.out, "Invoice %s cancelled\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newInvoicesDuplicateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Create a draft copy of an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := app.Invoices.Duplicate(cmd.Context(), args[0])
			if err != nil {
				return renderError(err)
			}
			fmt.Fprintf(app.out, "Created copy %s (%s)\n", inv.Number, inv.ID)
			return nil
		},
	}
}

func newInvoicesPayCmd(app *App) *cobra.Command {
	var (
		amount float64
		method string
		ref    string
	)

	cmd := &cobra.Command{
		Use:   "pay <id>",
		Short: "Record a payment against an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount <= 0 {
				return fmt.Errorf("--amount must be positive")
			}
			inv, err := app.Invoices.RecordPayment(cmd.Context(), args[0], models.Payment{
				Amount:    amount,
				Method:    method,
				Reference: ref,
				PaidAt:    time.Now(),
			})
			if err != nil {
				return renderError(err)
			}
			fmt.Fprintf(app.out, "Recorded %.2f %s against %s, status %s, paid %.2f of %.2f\n",
				amount, inv.Currency, inv.Number, inv.Status, inv.AmountPaid, inv.Total)
			return nil
		},
	}
	cmd.Flags().Float64VarP(&amount, "amount", "a", 0, "payment amount")
	cmd.Flags().StringVarP(&method, "method", "m", "", "payment method")
	cmd.Flags().StringVarP(&ref, "reference", "r", "", "payment reference")
	return cmd
}

func newInvoicesPDFCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "pdf <id>",
		Short: "Download the rendered invoice PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.UI.SetBusy(true, "Rendering PDF...")
			body, err := app.Invoices.DownloadPDF(cmd.Context(), args[0])
			app.UI.SetBusy(false, "")
			if err != nil {
				return renderError(err)
			}
			if outPath == "" {
				outPath = fmt.Sprintf("invoice-%s.pdf", args[0])
			}
			if err := os.WriteFile(outPath, body, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintf(app.out, "Saved %s (%d bytes)\n", outPath, len(body))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "file", "f", "", "destination file (default invoice-<id>.pdf)")
	return cmd
}

func newInvoicesExportCmd(app *App) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all invoices as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.UI.SetBusy(true, "Exporting invoices...")
			body, err := app.Invoices.Export(cmd.Context())
			app.UI.SetBusy(false, "")
			if err != nil {
				return renderError(err)
			}
			if outPath == "" {
				fmt.Fprint(app.out, string(body))
				return nil
			}
			if err := os.WriteFile(outPath, body, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			fmt.Fprintf(app.out, "Saved %s (%d bytes)\n", outPath, len(body))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "file", "f", "", "destination file (stdout when omitted)")
	return cmd
}
