package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/invoicedesk/idesk/internal/logging"
	"github.com/invoicedesk/idesk/internal/models"
)

// ClientsAPI talks to the /clients resource.
type ClientsAPI struct {
	t   *Transport
	log logging.Logger
}

func NewClientsAPI(t *Transport, log logging.Logger) *ClientsAPI {
	return &ClientsAPI{t: t, log: log}
}

func (a *ClientsAPI) List(ctx context.Context, p ListParams) (ListResult[models.Client], error) {
	op := Op{Name: "clients.List", Method: http.MethodGet, Path: "/clients"}

	resp, err := a.t.Get(ctx, "/clients", p.Values())
	if err != nil {
		return ListResult[models.Client]{}, Normalize(err, "failed to load clients", op, a.log)
	}
	out, err := decodeList[models.Client](resp)
	if err != nil {
		return ListResult[models.Client]{}, Normalize(err, "failed to load clients", op, a.log)
	}
	return out, nil
}

func (a *ClientsAPI) Get(ctx context.Context, id string) (*models.Client, error) {
	path := "/clients/" + id
	op := Op{Name: "clients.Get", Method: http.MethodGet, Path: path}

	resp, err := a.t.Get(ctx, path, nil)
	if err != nil {
		return nil, Normalize(err, "failed to load client", op, a.log)
	}
	client, err := decodeData[models.Client](resp)
	if err != nil {
		return nil, Normalize(err, "failed to load client", op, a.log)
	}
	return &client, nil
}

func (a *ClientsAPI) Create(ctx context.Context, in models.ClientInput) (*models.Client, error) {
	op := Op{Name: "clients.Create", Method: http.MethodPost, Path: "/clients"}

	resp, err := a.t.Post(ctx, "/clients", in)
	if err != nil {
		return nil, Normalize(err, "failed to create client", op, a.log)
	}
	client, err := decodeData[models.Client](resp)
	if err != nil {
		return nil, Normalize(err, "failed to create client", op, a.log)
	}
	return &client, nil
}

// Update replaces the client record. The version number travels in an
// If-Match header so the server can detect concurrent modification.
func (a *ClientsAPI) Update(ctx context.Context, id string, version int64, in models.ClientInput) (*models.Client, error) {
	path := "/clients/" + id
	op := Op{Name: "clients.Update", Method: http.MethodPut, Path: path}

	resp, err := a.t.Put(ctx, path, in, WithIfMatch(version))
	if err != nil {
		return nil, Normalize(err, "failed to update client", op, a.log)
	}
	client, err := decodeData[models.Client](resp)
	if err != nil {
		return nil, Normalize(err, "failed to update client", op, a.log)
	}
	return &client, nil
}

func (a *ClientsAPI) Delete(ctx context.Context, id string) error {
	path := "/clients/" + id
	op := Op{Name: "clients.Delete", Method: http.MethodDelete, Path: path}

	resp, err := a.t.Delete(ctx, path)
	if err != nil {
		return Normalize(err, "failed to delete client", op, a.log)
	}
	if _, err := decodeData[json.RawMessage](resp); err != nil {
		return Normalize(err, "failed to delete client", op, a.log)
	}
	return nil
}

// History returns the activity log of a client.
func (a *ClientsAPI) History(ctx context.Context, id string) ([]models.HistoryEntry, error) {
	path := "/clients/" + id + "/history"
	op := Op{Name: "clients.History", Method: http.MethodGet, Path: path}

	resp, err := a.t.Get(ctx, path, nil)
	if err != nil {
		return nil, Normalize(err, "failed to load client history", op, a.log)
	}
	entries, err := decodeData[[]models.HistoryEntry](resp)
	if err != nil {
		return nil, Normalize(err, "failed to load client history", op, a.log)
	}
	return entries, nil
}
