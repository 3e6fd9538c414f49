package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/invoicedesk/idesk/internal/api"
	"github.com/invoicedesk/idesk/internal/dbx"
	"github.com/invoicedesk/idesk/internal/logging"
	"github.com/invoicedesk/idesk/internal/models"
	"github.com/invoicedesk/idesk/internal/repositories/settings"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
)

// AuthAPI is the slice of the transport layer the session needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.Credentials, error)
	Register(ctx context.Context, in models.RegisterInput) (*models.Credentials, error)
	Me(ctx context.Context) (*models.User, error)
}

// SessionStore owns the auth token and the current user. The two are kept
// in lockstep: either both are set or both are empty, in memory and in the
// settings database alike.
type SessionStore struct {
	api AuthAPI
	db  *sql.DB
	log logging.Logger

	// now is swapped in tests to fake token expiry.
	now func() time.Time

	mu    sync.Mutex
	token string
	user  *models.User
}

func NewSessionStore(a AuthAPI, db *sql.DB, log logging.Logger) *SessionStore {
	return &SessionStore{api: a, db: db, log: log, now: time.Now}
}

// Token returns the current bearer token, empty when signed out. It is the
// token source wired into the transport.
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// IsAuthenticated reports whether a full session is live: both the token and
// the user record must be present.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.user != nil
}

// CurrentUser returns a copy of the signed-in user.
func (s *SessionStore) CurrentUser() (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, false
	}
	u := *s.user
	return &u, true
}

// Restore loads the persisted session. An absent or expired token leaves the
// store signed out; a persisted token without a persisted user (or the other
// way round) is treated as corrupt and wiped.
func (s *SessionStore) Restore(ctx context.Context) error {
	repo := settings.NewSQLiteRepository(s.db)

	rawToken, err := repo.Get(ctx, settings.KeyAuthToken)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	rawUser, err := repo.Get(ctx, settings.KeyAuthUser)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	if len(rawToken) == 0 || len(rawUser) == 0 {
		if len(rawToken) != 0 || len(rawUser) != 0 {
			s.log.Warn(ctx, "partial session in storage, clearing")
			return s.clearPersisted(ctx)
		}
		return nil
	}

	token := string(rawToken)
	if expired, err := s.tokenExpired(token); err != nil || expired {
		if err != nil {
			s.log.Warn(ctx, "stored token is malformed, clearing", "error", err)
		} else {
			s.log.Debug(ctx, "stored token expired, clearing")
		}
		return s.clearPersisted(ctx)
	}

	var user models.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		s.log.Warn(ctx, "stored user is malformed, clearing", "error", err)
		return s.clearPersisted(ctx)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
	return nil
}

// tokenExpired checks the exp claim without verifying the signature. The
// server remains the authority; this only avoids starting a session that is
// guaranteed to be rejected.
func (s *SessionStore) tokenExpired(token string) (bool, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false, err
	}
	if exp == nil {
		return false, nil
	}
	return exp.Before(s.now()), nil
}

// Login exchanges credentials for a token and persists the session. A
// rejected attempt signs the store out: whatever session existed before must
// not survive a failed re-authentication.
func (s *SessionStore) Login(ctx context.Context, email, password string) (*models.User, error) {
	creds, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.dropOnFailure(ctx, err)
		return nil, err
	}
	if err := s.adopt(ctx, creds); err != nil {
		return nil, err
	}
	return &creds.User, nil
}

// Register creates an account and signs in with the returned credentials. A
// rejected attempt signs the store out, same as Login.
func (s *SessionStore) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	creds, err := s.api.Register(ctx, in)
	if err != nil {
		s.dropOnFailure(ctx, err)
		return nil, err
	}
	if err := s.adopt(ctx, creds); err != nil {
		return nil, err
	}
	return &creds.User, nil
}

// dropOnFailure clears the session after a failed auth attempt. A cancelled
// request is not a verdict on the credentials, so it leaves the session
// alone.
func (s *SessionStore) dropOnFailure(ctx context.Context, cause error) {
	if api.IsCancelled(cause) {
		return
	}
	if err := s.clearPersisted(ctx); err != nil {
		s.log.Warn(ctx, "failed to clear session after auth failure", "error", err)
	}
}

// adopt persists token and user atomically, then commits them to memory.
func (s *SessionStore) adopt(ctx context.Context, creds *models.Credentials) error {
	rawUser, err := json.Marshal(creds.User)
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := settings.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, settings.KeyAuthToken, []byte(creds.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, settings.KeyAuthUser, rawUser)
	})
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	user := creds.User
	s.mu.Lock()
	s.token = creds.Token
	s.user = &user
	s.mu.Unlock()
	return nil
}

// LoadCurrentUser refreshes the cached user record from the server. A token
// that is already expired locally fails fast with ErrSessionExpired and never
// reaches the network; a 401 from the server clears the session the same way.
func (s *SessionStore) LoadCurrentUser(ctx context.Context) (*models.User, error) {
	token := s.Token()
	if token == "" || !s.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if expired, err := s.tokenExpired(token); err != nil || expired {
		if err != nil {
			s.log.Warn(ctx, "current token is malformed, clearing", "error", err)
		}
		if cerr := s.clearPersisted(ctx); cerr != nil {
			s.log.Warn(ctx, "failed to clear expired session", "error", cerr)
		}
		return nil, ErrSessionExpired
	}
	u, err := s.api.Me(ctx)
	if err != nil {
		if ae := asAPIError(err); ae.Status == http.StatusUnauthorized {
			s.dropOnFailure(ctx, err)
		}
		return nil, err
	}
	if err := s.persistUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUser merges a profile patch into the cached user and re-persists it.
// No network call: the caller has already applied the change server-side.
func (s *SessionStore) UpdateUser(ctx context.Context, patch models.UserPatch) error {
	s.mu.Lock()
	if s.token == "" || s.user == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	u := *s.user
	s.mu.Unlock()

	patch.Apply(&u)
	return s.persistUser(ctx, &u)
}

func (s *SessionStore) persistUser(ctx context.Context, u *models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	repo := settings.NewSQLiteRepository(s.db)
	if err := repo.Set(ctx, settings.KeyAuthUser, raw); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	user := *u
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

// Logout clears the session from storage and memory. Safe to call when
// already signed out, and safe to call from the transport's unauthorized
// hook.
func (s *SessionStore) Logout(ctx context.Context) error {
	return s.clearPersisted(ctx)
}

func (s *SessionStore) clearPersisted(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := settings.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, settings.KeyAuthToken); err != nil {
			return err
		}
		return repo.Delete(ctx, settings.KeyAuthUser)
	})
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return nil
}
