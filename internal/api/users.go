package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/invoicedesk/idesk/internal/logging"
	"github.com/invoicedesk/idesk/internal/models"
)

// UsersAPI talks to the /users resource (account administration).
type UsersAPI struct {
	t   *Transport
	log logging.Logger
}

func NewUsersAPI(t *Transport, log logging.Logger) *UsersAPI {
	return &UsersAPI{t: t, log: log}
}

func (a *UsersAPI) List(ctx context.Context, p ListParams) (ListResult[models.User], error) {
	op := Op{Name: "users.List", Method: http.MethodGet, Path: "/users"}

	resp, err := a.t.Get(ctx, "/users", p.Values())
	if err != nil {
		return ListResult[models.User]{}, Normalize(err, "failed to load users", op, a.log)
	}
	out, err := decodeList[models.User](resp)
	if err != nil {
		return ListResult[models.User]{}, Normalize(err, "failed to load users", op, a.log)
	}
	return out, nil
}

func (a *UsersAPI) Get(ctx context.Context, id string) (*models.User, error) {
	path := "/users/" + id
	op := Op{Name: "users.Get", Method: http.MethodGet, Path: path}

	resp, err := a.t.Get(ctx, path, nil)
	if err != nil {
		return nil, Normalize(err, "failed to load user", op, a.log)
	}
	user, err := decodeData[models.User](resp)
	if err != nil {
		return nil, Normalize(err, "failed to load user", op, a.log)
	}
	return &user, nil
}

func (a *UsersAPI) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	path := "/users/" + id
	op := Op{Name: "users.Update", Method: http.MethodPut, Path: path}

	resp, err := a.t.Put(ctx, path, patch)
	if err != nil {
		return nil, Normalize(err, "failed to update user", op, a.log)
	}
	user, err := decodeData[models.User](resp)
	if err != nil {
		return nil, Normalize(err, "failed to update user", op, a.log)
	}
	return &user, nil
}

func (a *UsersAPI) Delete(ctx context.Context, id string) error {
	path := "/users/" + id
	op := Op{Name: "users.Delete", Method: http.MethodDelete, Path: path}

	resp, err := a.t.Delete(ctx, path)
	if err != nil {
		return Normalize(err, "failed to delete user", op, a.log)
	}
	if _, err := decodeData[json.RawMessage](resp); err != nil {
		return Normalize(err, "failed to delete user", op, a.log)
	}
	return nil
}
