package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/invoicedesk/idesk/internal/api"
	"github.com/invoicedesk/idesk/internal/cli/output"
	"github.com/invoicedesk/idesk/internal/models"
	"github.com/invoicedesk/idesk/internal/store"
)

// listFlags are the shared pagination/filter flags of list commands.
type listFlags struct {
	page    int
	limit   int
	search  string
	sortBy  string
	sortDir string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "page number")
	cmd.Flags().IntVarP(&f.limit, "limit", "l", 20, "records per page")
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "search term")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "sort field")
	cmd.Flags().StringVar(&f.sortDir, "dir", "", "sort direction (asc, desc)")
}

func (f *listFlags) params() api.ListParams {
	return api.ListParams{
		Page:    f.page,
		Limit:   f.limit,
		Search:  f.search,
		SortBy:  f.sortBy,
		SortDir: f.sortDir,
	}
}

func pageFooter(p store.Pagination) string {
	return fmt.Sprintf("page %d of %d (%d total)", p.CurrentPage, p.TotalPages, p.TotalItems)
}

func newClientsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage the client directory",
	}
	cmd.AddCommand(
		newClientsListCmd(app),
		newClientsGetCmd(app),
		newClientsCreateCmd(app),
		newClientsUpdateCmd(app),
		newClientsDeleteCmd(app),
		newClientsHistoryCmd(app),
	)
	return cmd
}

func newClientsListCmd(app *App) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Clients.Fetch(cmd.Context(), flags.params()); err != nil {
				return renderError(err)
			}

			items := app.Clients.Cache.Items()
			rows := make([][]string, 0, len(items))
			for _, c := range items {
				rows = append(rows, []string{c.ID, c.CompanyName, c.ContactName, c.Email, c.Phone})
			}

			if err := app.render(&output.TableData{
				Headers: []string{"ID", "COMPANY", "CONTACT", "EMAIL", "PHONE"},
				Rows:    rows,
			}, items); err != nil {
				return err
			}
			fmt.Fprintln(app.out, pageFooter(app.Clients.Cache.Pagination()))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newClientsGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Clients.FetchOne(cmd.Context(), args[0])
			if err != nil {
				return renderError(err)
			}
			return app.render(&output.TableData{
				Headers: []string{"ID", "COMPANY", "CONTACT", "EMAIL", "PHONE", "VERSION"},
				Rows:    [][]string{{c.ID, c.CompanyName, c.ContactName, c.Email, c.Phone, strconv.FormatInt(c.Version, 10)}},
			}, c)
		},
	}
}

func clientInputFlags(cmd *cobra.Command, in *models.ClientInput) {
	cmd.Flags().StringVar(&in.CompanyName, "company", "", "company name")
	cmd.Flags().StringVar(&in.ContactName, "contact", "", "contact person")
	cmd.Flags().StringVar(&in.Email, "email", "", "contact email")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&in.Address, "address", "", "postal address")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "free-form notes")
}

func newClientsCreateCmd(app *App) *cobra.Command {
	var in models.ClientInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.CompanyName == "" {
				return fmt.Errorf("--company is required")
			}
			c, err := app.Clients.Create(cmd.Context(), in)
			if err != nil {
				return renderError(err)
			}
			fmt.Fprintf(app.out, "Created client %s (%s)\n", c.CompanyName, c.ID)
			return nil
		},
	}
	clientInputFlags(cmd, &in)
	return cmd
}

func newClientsUpdateCmd(app *App) *cobra.Command {
	var in models.ClientInput
	var version int64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if version == 0 {
				current, err := app.Clients.FetchOne(cmd.Context(), args[0])
				if err != nil {
					return renderError(err)
				}
				version = current.Version
			}
			c, err := app.Clients.Update(cmd.Context(), args[0], version, in)
			if err != nil {
				return renderError(err)
			}
			fmt.Fprintf(app.out, "Updated client %s (version %d)\n", c.ID, c.Version)
			return nil
		},
	}
	clientInputFlags(cmd, &in)
	cmd.Flags().Int64Var(&version, "version", 0, "expected record version (fetched when omitted)")
	return cmd
}

func newClientsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.UI.RequestConfirmation(store.Confirmation{
				Action:  "clients.delete",
				Title:   "Delete client",
				Message: fmt.Sprintf("Delete client %s?", args[0]),
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
			fmt.Fprintf(app.out, "Deleted client %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newClientsHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show the change history of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := app.Clients.History(cmd.Context(), args[0])
			if err != nil {
				return renderError(err)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.ID, e.Action, e.Details, e.UserID, e.CreatedAt.Format("2006-01-02 15:04")})
			}
			return app.render(&output.TableData{
				Headers: []string{"ID", "ACTION", "DETAILS", "BY", "WHEN"},
				Rows:    rows,
			}, entries)
		},
	}
}
