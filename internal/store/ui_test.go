package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/invoicedesk/idesk/internal/logging"
	"github.com/invoicedesk/idesk/internal/repositories/settings"
)

func newUIStore(t *testing.T, width int) (*UIStore, settings.Repository) {
	t.Helper()
	db, err := settings.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := settings.NewSQLiteRepository(db)
	return NewUIStore(repo, width, ThemeLight, logging.NewDiscard()), repo
}

func TestUIStore_SidebarDefaultFromWidth(t *testing.T) {
	tests := []struct {
		name  string
		width int
		open  bool
	}{
		{"wide terminal", 180, true},
		{"narrow terminal", 80, false},
		{"unknown width", 0, true},
		{"exactly at threshold", 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newUIStore(t, tt.width)
			assert.Equal(t, tt.open, s.SidebarOpen())
		})
	}
}

func TestUIStore_ToggleSidebar(t *testing.T) {
	s, _ := newUIStore(t, 180)
	assert.False(t, s.ToggleSidebar())
	assert.True(t, s.ToggleSidebar())
}

func TestUIStore_SetTheme_Persists(t *testing.T) {
	s, repo := newUIStore(t, 0)
	require.NoError(t, s.SetTheme(context.Background(), ThemeDark))
	assert.Equal(t, ThemeDark, s.Theme())

	raw, err := repo.Get(context.Background(), settings.KeyAppTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", string(raw))
}

func TestUIStore_SetTheme_RejectsUnknown(t *testing.T) {
	s, _ := newUIStore(t, 0)
	err := s.SetTheme(context.Background(), Theme("solarized"))
	require.Error(t, err)
	assert.Equal(t, ThemeLight, s.Theme())
}

func TestUIStore_Restore_LoadsPersistedTheme(t *testing.T) {
	s, repo := newUIStore(t, 0)
	require.NoError(t, repo.Set(context.Background(), settings.KeyAppTheme, []byte("dark")))

	require.NoError(t, s.Restore(context.Background()))
	assert.Equal(t, ThemeDark, s.Theme())
}

func TestUIStore_Restore_IgnoresUnknownTheme(t *testing.T) {
	s, repo := newUIStore(t, 0)
	require.NoError(t, repo.Set(context.Background(), settings.KeyAppTheme, []byte("neon")))

	require.NoError(t, s.Restore(context.Background()))
	assert.Equal(t, ThemeLight, s.Theme())
}

func TestUIStore_ToggleTheme(t *testing.T) {
	s, _ := newUIStore(t, 0)

	next, err := s.ToggleTheme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, next)

	next, err = s.ToggleTheme(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, next)
}

func TestUIStore_ConfirmRunsRegisteredAction(t *testing.T) {
	s, _ := newUIStore(t, 0)

	var gotID string
	s.RegisterAction("clients.delete", func(ctx context.Context, args map[string]string) error {
		gotID = args["id"]
		return nil
	})

	s.RequestConfirmation(Confirmation{
		Action:  "clients.delete",
		Title:   "Delete client",
		Message: "Delete client Acme?",
		Loading: true, // запрос всегда открывается без флага загрузки
		Args:    map[string]string{"id": "c1"},
	})

	pending, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, "Delete client Acme?", pending.Message)
	assert.False(t, pending.Loading)

	require.NoError(t, s.Confirm(context.Background()))
	assert.Equal(t, "c1", gotID)

	_, ok = s.Pending()
	assert.False(t, ok, "confirmation is consumed")
}

func TestUIStore_Confirm_NoPending(t *testing.T) {
	s, _ := newUIStore(t, 0)
	assert.ErrorIs(t, s.Confirm(context.Background()), ErrNoConfirmation)
}

func TestUIStore_Confirm_UnknownAction(t *testing.T) {
	s, _ := newUIStore(t, 0)
	s.RequestConfirmation(Confirmation{Action: "does.not.exist"})
	assert.ErrorIs(t, s.Confirm(context.Background()), ErrUnknownConfirmation)
}

func TestUIStore_Confirm_ClearsEvenOnFailure(t *testing.T) {
	s, _ := newUIStore(t, 0)
	s.RegisterAction("boom", func(ctx context.Context, args map[string]string) error {
		return errors.New("kaput")
	})
	s.RequestConfirmation(Confirmation{Action: "boom"})

	require.Error(t, s.Confirm(context.Background()))
	_, ok := s.Pending()
	assert.False(t, ok)
}

func TestUIStore_NewRequestReplacesOld(t *testing.T) {
	s, _ := newUIStore(t, 0)
	s.RequestConfirmation(Confirmation{Action: "first"})
	s.RequestConfirmation(Confirmation{Action: "second"})

	pending, ok := s.Pending()
	require.True(t, ok)
	assert.Equal(t, "second", pending.Action)
}

func TestUIStore_Dismiss(t *testing.T) {
	s, _ := newUIStore(t, 0)
	s.RequestConfirmation(Confirmation{Action: "x"})
	s.Dismiss()
	_, ok := s.Pending()
	assert.False(t, ok)
}

func TestUIStore_BusyFlag(t *testing.T) {
	s, _ := newUIStore(t, 0)
	busy, msg := s.Busy()
	assert.False(t, busy)

	s.SetBusy(true, "Exporting invoices...")
	busy, msg = s.Busy()
	assert.True(t, busy)
	assert.Equal(t, "Exporting invoices...", msg)

	s.SetBusy(false, "stale")
	busy, msg = s.Busy()
	assert.False(t, busy)
	assert.Empty(t, msg)
}
