package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invoicedesk/idesk/internal/store"
)

func newThemeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme [light|dark|toggle]",
		Short: "Show or change the colour theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(app.out, app.UI.Theme())
				return nil
			}

			var next store.Theme
			switch args[0] {
			case "toggle":
				t, err := app.UI.ToggleTheme(cmd.Context())
				if err != nil {
					return err
				}
				next = t
			default:
				next = store.Theme(args[0])
				if err := app.UI.SetTheme(cmd.Context(), next); err != nil {
					return err
				}
			}
			fmt.Fprintf(app.out, "Theme set to %s\n", next)
			return nil
		},
	}
	return cmd
}
