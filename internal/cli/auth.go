package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invoicedesk/idesk/internal/cli/output"
	"github.com/invoicedesk/idesk/internal/models"
)

func newLoginCmd(app *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				email, err = GetSimpleText(app.reader, "Email", app.out)
				if err != nil {
					return err
				}
			}
			pw, err := GetPassword(app.out)
			if err != nil {
				return err
			}

			u, err := app.Session.Login(cmd.Context(), email, string(pw))
			if err != nil {
				return renderError(err)
			}
			fmt.Fprintf(app.out, "Signed in as %s (%s)\n", u.Name, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if name == "" {
				name, err = GetSimpleText(app.reader, "Name", app.out)
				if err != nil {
					return err
				}
			}
			if email == "" {
				email, err = GetSimpleText(app.reader, "Email", app.out)
				if err != nil {
					return err
				}
			}
			pw, err := GetPassword(app.out)
			if err != nil {
				return err
			}

			u, err := app.Session.Register(cmd.Context(), models.RegisterInput{
				Name:     name,
				Email:    email,
				Password: string(pw),
			})
			if err != nil {
				return renderError(err)
			}
			fmt.Fprintf(app.out, "Account created, signed in as %s\n", u.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			app.resetStores()
			fmt.Fprintln(app.out, "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Session.IsAuthenticated() {
				return fmt.Errorf("not signed in, run 'idesk login' first")
			}

			var u *models.User
			var err error
			if refresh {
				u, err = app.Session.LoadCurrentUser(cmd.Context())
				if err != nil {
					return renderError(err)
				}
			} else {
				var ok bool
				u, ok = app.Session.CurrentUser()
				if !ok {
					return fmt.Errorf("not signed in, run 'idesk login' first")
				}
			}

			return app.render(&output.TableData{
				Headers: []string{"ID", "NAME", "EMAIL", "ROLE"},
				Rows:    [][]string{{u.ID, u.Name, u.Email, string(u.Role)}},
			}, u)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-fetch the profile from the server")
	return cmd
}
