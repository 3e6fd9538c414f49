package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/invoicedesk/idesk/internal/cli/output"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative dashboards and audit logs",
	}
	cmd.AddCommand(
		newAdminStatsCmd(app),
		newAdminLogsCmd(app),
	)
	return cmd
}

func newAdminStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the admin dashboard figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Admin.FetchStats(cmd.Context())
			if err != nil {
				return renderError(err)
			}
			return app.render(&output.TableData{
				Headers: []string{"CLIENTS", "INVOICES", "USERS", "REVENUE", "OUTSTANDING", "OVERDUE"},
				Rows: [][]string{{
					strconv.Itoa(st.TotalClients),
					strconv.Itoa(st.TotalInvoices),
					strconv.Itoa(st.TotalUsers),
					fmt.Sprintf("%.2f", st.Revenue),
					fmt.Sprintf("%.2f", st.OutstandingSum),
					strconv.Itoa(st.OverdueInvoices),
				}},
			}, st)
		},
	}
}

func newAdminLogsCmd(app *App) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "security-logs",
		Short: "Show the security audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Admin.FetchLogs(cmd.Context(), flags.params()); err != nil {
				return renderError(err)
			}

			items := app.Admin.Logs.Items()
			rows := make([][]string, 0, len(items))
			for _, e := range items {
				rows = append(rows, []string{
					e.CreatedAt.Format("2006-01-02 15:04:05"),
					e.UserEmail,
					e.Action,
					e.IPAddress,
				})
			}

			if err := app.render(&output.TableData{
				Headers: []string{"WHEN", "USER", "ACTION", "IP"},
				Rows:    rows,
			}, items); err != nil {
				return err
			}
			fmt.Fprintln(app.out, pageFooter(app.Admin.Logs.Pagination()))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
