package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invoicedesk/idesk/internal/store"
)

func newEventsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow the realtime change feed",
	}
	cmd.AddCommand(newEventsListenCmd(app))
	return cmd
}

func newEventsListenCmd(app *App) *cobra.Command {
	var eventType string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print change events as they arrive (Ctrl-C to stop)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := app.Feed.Connect(ctx); err != nil {
				return err
			}
			defer app.Feed.Close()

			// keep the caches in sync while listening
			stop := store.BindRealtime(app.Feed, app.Clients, app.Invoices, app.Users, app.log)
			defer stop()

			events, cancel := app.Feed.Subscribe(eventType)
			defer cancel()

			fmt.Fprintln(app.out, "Listening for events...")
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-app.Feed.Done():
					return fmt.Errorf("event feed closed")
				case ev := <-events:
					fmt.Fprintf(app.out, "%s %s\n", ev.Type, string(ev.Payload))
				}
			}
		},
	}
	cmd.Flags().StringVarP(&eventType, "type", "t", "", "only print events of this type")
	return cmd
}
