package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/invoicedesk/idesk/internal/cli/output"
	"github.com/invoicedesk/idesk/internal/models"
	"github.com/invoicedesk/idesk/internal/store"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administer user accounts",
	}
	cmd.AddCommand(
		newUsersListCmd(app),
		newUsersGetCmd(app),
		newUsersUpdateCmd(app),
		newUsersDeleteCmd(app),
	)
	return cmd
}

func userRow(u models.User) []string {
	return []string{u.ID, u.Name, u.Email, string(u.Role), strconv.FormatBool(u.Active)}
}

var userHeaders = []string{"ID", "NAME", "EMAIL", "ROLE", "ACTIVE"}

func newUsersListCmd(app *App) *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Users.Fetch(cmd.Context(), flags.params()); err != nil {
				return renderError(err)
			}

			items := app.Users.Cache.Items()
			rows := make([][]string, 0, len(items))
			for _, u := range items {
				rows = append(rows, userRow(u))
			}

			if err := app.render(&output.TableData{Headers: userHeaders, Rows: rows}, items); err != nil {
				return err
			}
			fmt.Fprintln(app.out, pageFooter(app.Users.Cache.Pagination()))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newUsersGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.Users.FetchOne(cmd.Context(), args[0])
			if err != nil {
				return renderError(err)
			}
			return app.render(&output.TableData{Headers: userHeaders, Rows: [][]string{userRow(*u)}}, u)
		},
	}
}

func newUsersUpdateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a user account",
		Long:  "Edit a user account. Only the flags given change; everything else\nkeeps its current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch models.UserPatch
			if cmd.Flags().Changed("name") {
				v, _ := cmd.Flags().GetString("name")
				patch.Name = &v
			}
			if cmd.Flags().Changed("email") {
				v, _ := cmd.Flags().GetString("email")
				patch.Email = &v
			}
			if cmd.Flags().Changed("role") {
				v, _ := cmd.Flags().GetString("role")
				role := models.Role(v)
				switch role {
				case models.RoleAdmin, models.RoleManager, models.RoleUser:
				default:
					return fmt.Errorf("unknown role %q", v)
				}
				patch.Role = &role
			}
			if cmd.Flags().Changed("active") {
				v, _ := cmd.Flags().GetBool("active")
				patch.Active = &v
			}

			u, err := app.Users.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return renderError(err)
			}
			// editing yourself also refreshes the cached session user
			if cur, ok := app.Session.CurrentUser(); ok && cur.ID == u.ID {
				if err := app.Session.UpdateUser(cmd.Context(), patch); err != nil {
					app.log.Warn(cmd.Context(), "failed to sync session user", "error", err)
				}
			}
			fmt.Fprintf(app.out, "Updated user %s\n", u.Email)
			return nil
		},
	}
	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("role", "", "role (admin, manager, user)")
	cmd.Flags().Bool("active", true, "account enabled")
	return cmd
}

func newUsersDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.UI.RequestConfirmation(store.Confirmation{
				Action:  "users.delete",
				Title:   "Delete user",
				Message: fmt.Sprintf("Delete user %s?", args[0]),
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
			fmt.Fprintf(app.out, "Deleted user %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
