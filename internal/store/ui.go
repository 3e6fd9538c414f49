package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/invoicedesk/idesk/internal/logging"
	"github.com/invoicedesk/idesk/internal/repositories/settings"
)

// Theme is the rendering palette preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// narrowWidth is the terminal width below which the sidebar starts collapsed.
const narrowWidth = 100

var (
	ErrNoConfirmation      = errors.New("no confirmation pending")
	ErrUnknownConfirmation = errors.New("unknown confirmation action")
)

// Confirmation describes a destructive action awaiting user approval. Only
// data is stored; the action is resolved through the registry when the user
// confirms, so a pending confirmation survives serialization.
type Confirmation struct {
	Action       string
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	Loading      bool
	Args         map[string]string
}

// ConfirmFunc executes a registered confirmable action.
type ConfirmFunc func(ctx context.Context, args map[string]string) error

// UIStore holds presentation state: theme, sidebar visibility, the global
// busy flag and the pending confirmation.
type UIStore struct {
	repo settings.Repository
	log  logging.Logger

	mu       sync.Mutex
	theme    Theme
	sidebar  bool
	busy     bool
	busyMsg  string
	pending  *Confirmation
	registry map[string]ConfirmFunc
}

// NewUIStore builds the UI state. width is the terminal width in columns;
// pass 0 when it cannot be determined and the sidebar defaults to open.
// defaultTheme applies until Restore finds a persisted choice; unknown values
// fall back to light.
func NewUIStore(repo settings.Repository, width int, defaultTheme Theme, log logging.Logger) *UIStore {
	if defaultTheme != ThemeLight && defaultTheme != ThemeDark {
		defaultTheme = ThemeLight
	}
	return &UIStore{
		repo:     repo,
		log:      log,
		theme:    defaultTheme,
		sidebar:  width == 0 || width >= narrowWidth,
		registry: make(map[string]ConfirmFunc),
	}
}

// Restore loads the persisted theme. Unknown values are ignored so a newer
// build's theme name cannot wedge an older one.
func (s *UIStore) Restore(ctx context.Context) error {
	raw, err := s.repo.Get(ctx, settings.KeyAppTheme)
	if err != nil {
		return fmt.Errorf("failed to restore theme: %w", err)
	}
	switch Theme(raw) {
	case ThemeLight, ThemeDark:
		s.mu.Lock()
		s.theme = Theme(raw)
		s.mu.Unlock()
	}
	return nil
}

func (s *UIStore) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetTheme switches the palette and persists the choice.
func (s *UIStore) SetTheme(ctx context.Context, t Theme) error {
	if t != ThemeLight && t != ThemeDark {
		return fmt.Errorf("unknown theme %q", t)
	}
	if err := s.repo.Set(ctx, settings.KeyAppTheme, []byte(t)); err != nil {
		return fmt.Errorf("failed to persist theme: %w", err)
	}
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()
	return nil
}

// ToggleTheme flips between light and dark.
func (s *UIStore) ToggleTheme(ctx context.Context) (Theme, error) {
	next := ThemeDark
	if s.Theme() == ThemeDark {
		next = ThemeLight
	}
	return next, s.SetTheme(ctx, next)
}

func (s *UIStore) SidebarOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sidebar
}

func (s *UIStore) ToggleSidebar() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sidebar = !s.sidebar
	return s.sidebar
}

// Busy reports the global busy flag and its message.
func (s *UIStore) Busy() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy, s.busyMsg
}

// SetBusy raises or clears the global busy flag. msg is shown alongside the
// flag and is cleared together with it.
func (s *UIStore) SetBusy(b bool, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = b
	if !b {
		msg = ""
	}
	s.busyMsg = msg
}

// RegisterAction makes an action available for confirmation requests.
func (s *UIStore) RegisterAction(name string, fn ConfirmFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry[name] = fn
}

// RequestConfirmation records a pending destructive action. A newer request
// replaces an older unanswered one. A freshly opened confirmation is never
// already loading.
func (s *UIStore) RequestConfirmation(c Confirmation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		s.log.Debug(context.Background(), "replacing pending confirmation", "action", s.pending.Action)
	}
	c.Loading = false
	s.pending = &c
}

// Pending returns the confirmation awaiting an answer, if any.
func (s *UIStore) Pending() (Confirmation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Confirmation{}, false
	}
	return *s.pending, true
}

// Confirm resolves the pending action through the registry and runs it. The
// descriptor is marked loading while the action runs and cleared whether the
// action succeeds or fails.
func (s *UIStore) Confirm(ctx context.Context) error {
	s.mu.Lock()
	c := s.pending
	if c == nil {
		s.mu.Unlock()
		return ErrNoConfirmation
	}
	fn := s.registry[c.Action]
	if fn == nil {
		s.pending = nil
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownConfirmation, c.Action)
	}
	c.Loading = true
	s.mu.Unlock()

	err := fn(ctx, c.Args)

	s.mu.Lock()
	if s.pending == c {
		s.pending = nil
	}
	s.mu.Unlock()
	return err
}

// Dismiss drops the pending confirmation without running it.
func (s *UIStore) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}
