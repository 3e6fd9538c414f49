package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/invoicedesk/idesk/internal/cli/output"
)

func newManagerCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manager",
		Short: "Manager workspace: scoped dashboards and listings",
	}
	cmd.AddCommand(
		newManagerDashboardCmd(app),
		newManagerQuotesCmd(app),
		newManagerInvoicesCmd(app),
		newManagerClientsCmd(app),
	)
	return cmd
}

func newManagerDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the manager dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.Manager.FetchDashboard(cmd.Context())
			if err != nil {
				return renderError(err)
			}
			return app.render(&output.TableData{
				Headers: []string{"OPEN QUOTES", "UNPAID", "MONTHLY REVENUE", "ACTIVE CLIENTS", "CONVERSION"},
				Rows: [][]string{{
					strconv.Itoa(d.OpenQuotes),
					strconv.Itoa(d.UnpaidInvoices),
					fmt.Sprintf("%.2f", d.MonthlyRevenue),
					strconv.Itoa(d.ActiveClients),
					fmt.Sprintf("%.1f%%", d.ConversionRate),
				}},
			}, d)
		},
	}
}

func newManagerQuotesCmd(app *App) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "List the manager's quotes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Manager.FetchQuotes(cmd.Context(), flags.params()); err != nil {
				return renderError(err)
			}

			items := app.Manager.Quotes.Items()
			rows := make([][]string, 0, len(items))
			for _, q := range items {
				rows = append(rows, []string{q.ID, q.Number, q.ClientID, q.Status, fmt.Sprintf("%.2f", q.Total), q.ExpiresAt.Format("2006-01-02")})
			}

			if err := app.render(&output.TableData{
				Headers: []string{"ID", "NUMBER", "CLIENT", "STATUS", "TOTAL", "EXPIRES"},
				Rows:    rows,
			}, items); err != nil {
				return err
			}
			fmt.Fprintln(app.out, pageFooter(app.Manager.Quotes.Pagination()))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newManagerInvoicesCmd(app *App) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "List the manager's invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Manager.FetchInvoices(cmd.Context(), flags.params()); err != nil {
				return renderError(err)
			}

			items := app.Manager.Invoices.Items()
			rows := make([][]string, 0, len(items))
			for _, inv := range items {
				rows = append(rows, invoiceRow(inv))
			}

			if err := app.render(&output.TableData{Headers: invoiceHeaders, Rows: rows}, items); err != nil {
				return err
			}
			fmt.Fprintln(app.out, pageFooter(app.Manager.Invoices.Pagination()))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newManagerClientsCmd(app *App) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List the manager's clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Manager.FetchClients(cmd.Context(), flags.params()); err != nil {
				return renderError(err)
			}

			items := app.Manager.Clients.Items()
			rows := make([][]string, 0, len(items))
			for _, c := range items {
				rows = append(rows, []string{c.ID, c.CompanyName, c.ContactName, c.Email})
			}

			if err := app.render(&output.TableData{
				Headers: []string{"ID", "COMPANY", "CONTACT", "EMAIL"},
				Rows:    rows,
			}, items); err != nil {
				return err
			}
			fmt.Fprintln(app.out, pageFooter(app.Manager.Clients.Pagination()))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
