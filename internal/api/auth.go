package api

import (
	"context"
	"net/http"

	"github.com/invoicedesk/idesk/internal/logging"
	"github.com/invoicedesk/idesk/internal/models"
)

// AuthAPI talks to the /auth endpoints.
type AuthAPI struct {
	t   *Transport
	log logging.Logger
}

func NewAuthAPI(t *Transport, log logging.Logger) *AuthAPI {
	return &AuthAPI{t: t, log: log}
}

// Login exchanges credentials for a bearer token and the user record.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (*models.Credentials, error) {
	body := map[string]string{"email": email, "password": password}
	op := Op{Name: "auth.Login", Method: http.MethodPost, Path: "/auth/login"}

	resp, err := a.t.Post(ctx, "/auth/login", body)
	if err != nil {
		return nil, Normalize(err, "login failed", op, a.log)
	}
	creds, err := decodeData[models.Credentials](resp)
	if err != nil {
		return nil, Normalize(err, "login failed", op, a.log)
	}
	return &creds, nil
}

// Register creates a new account and returns its credentials.
func (a *AuthAPI) Register(ctx context.Context, in models.RegisterInput) (*models.Credentials, error) {
	op := Op{Name: "auth.Register", Method: http.MethodPost, Path: "/auth/register"}

	resp, err := a.t.Post(ctx, "/auth/register", in)
	if err != nil {
		return nil, Normalize(err, "registration failed", op, a.log)
	}
	creds, err := decodeData[models.Credentials](resp)
	if err != nil {
		return nil, Normalize(err, "registration failed", op, a.log)
	}
	return &creds, nil
}

// Me returns the user the current token belongs to.
func (a *AuthAPI) Me(ctx context.Context) (*models.User, error) {
	op := Op{Name: "auth.Me", Method: http.MethodGet, Path: "/auth/me"}

	resp, err := a.t.Get(ctx, "/auth/me", nil)
	if err != nil {
		return nil, Normalize(err, "failed to load current user", op, a.log)
	}
	user, err := decodeData[models.User](resp)
	if err != nil {
		return nil, Normalize(err, "failed to load current user", op, a.log)
	}
	return &user, nil
}
