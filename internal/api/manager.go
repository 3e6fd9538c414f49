package api

import (
	"context"
	"net/http"

	"github.com/invoicedesk/idesk/internal/logging"
	"github.com/invoicedesk/idesk/internal/models"
)

// ManagerAPI talks to the manager-scoped read views. These endpoints flatten
// their pagination fields to the envelope's top level; decodeList translates
// that variant into the canonical ListResult.
type ManagerAPI struct {
	t   *Transport
	log logging.Logger
}

func NewManagerAPI(t *Transport, log logging.Logger) *ManagerAPI {
	return &ManagerAPI{t: t, log: log}
}

func (a *ManagerAPI) Dashboard(ctx context.Context) (*models.ManagerDashboard, error) {
	op := Op{Name: "manager.Dashboard", Method: http.MethodGet, Path: "/manager/dashboard-data"}

	resp, err := a.t.Get(ctx, "/manager/dashboard-data", nil)
	if err != nil {
		return nil, Normalize(err, "failed to load manager dashboard", op, a.log)
	}
	data, err := decodeData[models.ManagerDashboard](resp)
	if err != nil {
		return nil, Normalize(err, "failed to load manager dashboard", op, a.log)
	}
	return &data, nil
}

func (a *ManagerAPI) Quotes(ctx context.Context, p ListParams) (ListResult[models.Quote], error) {
	op := Op{Name: "manager.Quotes", Method: http.MethodGet, Path: "/manager/quotes"}

	resp, err := a.t.Get(ctx, "/manager/quotes", p.Values())
	if err != nil {
		return ListResult[models.Quote]{}, Normalize(err, "failed to load quotes", op, a.log)
	}
	out, err := decodeList[models.Quote](resp)
	if err != nil {
		return ListResult[models.Quote]{}, Normalize(err, "failed to load quotes", op, a.log)
	}
	return out, nil
}

func (a *ManagerAPI) Invoices(ctx context.Context, p ListParams) (ListResult[models.Invoice], error) {
	op := Op{Name: "manager.Invoices", Method: http.MethodGet, Path: "/manager/invoices"}

	resp, err := a.t.Get(ctx, "/manager/invoices", p.Values())
	if err != nil {
		return ListResult[models.Invoice]{}, Normalize(err, "failed to load manager invoices", op, a.log)
	}
	out, err := decodeList[models.Invoice](resp)
	if err != nil {
		return ListResult[models.Invoice]{}, Normalize(err, "failed to load manager invoices", op, a.log)
	}
	return out, nil
}

func (a *ManagerAPI) Clients(ctx context.Context, p ListParams) (ListResult[models.Client], error) {
	op := Op{Name: "manager.Clients", Method: http.MethodGet, Path: "/manager/clients"}

	resp, err := a.t.Get(ctx, "/manager/clients", p.Values())
	if err != nil {
		return ListResult[models.Client]{}, Normalize(err, "failed to load manager clients", op, a.log)
	}
	out, err := decodeList[models.Client](resp)
	if err != nil {
		return ListResult[models.Client]{}, Normalize(err, "failed to load manager clients", op, a.log)
	}
	return out, nil
}
