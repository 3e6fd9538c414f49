package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"net/http"
	"os"

	"golang.org/x/term"
	_ "modernc.org/sqlite"

	"github.com/invoicedesk/idesk/internal/api"
	"github.com/invoicedesk/idesk/internal/config"
	"github.com/invoicedesk/idesk/internal/logging"
	"github.com/invoicedesk/idesk/internal/realtime"
	"github.com/invoicedesk/idesk/internal/repositories/settings"
	"github.com/invoicedesk/idesk/internal/store"
)

// App wires the configured transport, the entity stores and the realtime
// feed together for the command layer.
type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	Session  *store.SessionStore
	UI       *store.UIStore
	Clients  *store.ClientsStore
	Invoices *store.InvoicesStore
	Users    *store.UsersStore
	Admin    *store.AdminStore
	Manager  *store.ManagerStore
	Feed     *realtime.Client

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := settings.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "failed to initialize settings database", "error", err)
		return nil, err
	}

	app := &App{
		config: c,
		log:    log,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	transport, err := api.NewTransport(api.Config{
		BaseURL:    c.APIBaseURL,
		HTTPClient: &http.Client{Timeout: c.RequestTimeout},
		Tokens:     func() string { return app.Session.Token() },
		Authenticated: func() bool {
			return app.Session.IsAuthenticated()
		},
		OnUnauthorized: func() {
			log.Warn(context.Background(), "session rejected by server, signing out")
			if err := app.Session.Logout(context.Background()); err != nil {
				log.Error(context.Background(), "failed to clear rejected session", "error", err)
			}
			app.resetStores()
		},
		Logger: log,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	app.Session = store.NewSessionStore(api.NewAuthAPI(transport, log), db, log)
	app.Clients = store.NewClientsStore(api.NewClientsAPI(transport, log))
	app.Invoices = store.NewInvoicesStore(api.NewInvoicesAPI(transport, log))
	app.Users = store.NewUsersStore(api.NewUsersAPI(transport, log))
	app.Admin = store.NewAdminStore(api.NewAdminAPI(transport, log))
	app.Manager = store.NewManagerStore(api.NewManagerAPI(transport, log))
	app.Feed = realtime.New(c.WebsocketURL, app.Session.Token, log)

	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	app.UI = store.NewUIStore(settings.NewSQLiteRepository(db), width, store.Theme(c.Theme), log)

	if err := app.Session.Restore(ctx); err != nil {
		log.Warn(ctx, "failed to restore session", "error", err)
	}
	if err := app.UI.Restore(ctx); err != nil {
		log.Warn(ctx, "failed to restore UI settings", "error", err)
	}

	app.registerConfirmables()
	return app, nil
}

// registerConfirmables wires the destructive operations behind the
// confirmation flow.
func (a *App) registerConfirmables() {
	a.UI.RegisterAction("clients.delete", func(ctx context.Context, args map[string]string) error {
		return a.Clients.Remove(ctx, args["id"])
	})
	a.UI.RegisterAction("invoices.delete", func(ctx context.Context, args map[string]string) error {
		return a.Invoices.Remove(ctx, args["id"])
	})
	a.UI.RegisterAction("invoices.cancel", func(ctx context.Context, args map[string]string) error {
		_, err := a.Invoices.Cancel(ctx, args["id"])
		return err
	})
	a.UI.RegisterAction("users.delete", func(ctx context.Context, args map[string]string) error {
		return a.Users.Remove(ctx, args["id"])
	})
}

// resetStores drops all cached entities, for sign-out.
func (a *App) resetStores() {
	a.Clients.Cache.Reset()
	a.Invoices.Cache.Reset()
	a.Users.Cache.Reset()
	a.Admin.Reset()
	a.Manager.Reset()
}

func (a *App) Close() error {
	if a.Feed != nil {
		_ = a.Feed.Close()
	}
	return a.db.Close()
}
