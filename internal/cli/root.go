package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invoicedesk/idesk/internal/api"
	"github.com/invoicedesk/idesk/internal/cli/output"
)

var outputFormat string

// NewRootCmd assembles the command tree around the wired App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "idesk",
		Short:         "InvoiceDesk CLI - clients, invoices and billing administration",
		Long:          "InvoiceDesk CLI talks to the InvoiceDesk backend: manage clients,\nissue and track invoices, administer users and follow live changes.",
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml)")

	root.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newClientsCmd(app),
		newInvoicesCmd(app),
		newUsersCmd(app),
		newAdminCmd(app),
		newManagerCmd(app),
		newEventsCmd(app),
		newThemeCmd(app),
	)
	return root
}

// formatter resolves the formatter selected by the -o flag.
func formatter() (output.Formatter, error) {
	return output.New(output.FormatType(outputFormat))
}

// render formats data and prints it to the app's writer. For the table
// format table is used; the structured formats get raw.
func (a *App) render(table *output.TableData, raw any) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	var data any = raw
	if _, isTable := f.(*output.TableFormatter); isTable {
		data = table
	}

	s, err := f.Format(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, s)
	return nil
}

// renderError turns an API failure into a short user-facing message. Field
// validation details are listed one per line.
func renderError(err error) error {
	var ae *api.Error
	if !errors.As(err, &ae) {
		return err
	}
	msg := ae.Message
	for field, detail := range ae.Details {
		msg += fmt.Sprintf("\n  %s: %s", field, detail)
	}
	return errors.New(msg)
}
