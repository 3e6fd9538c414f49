package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/invoicedesk/idesk/internal/logging"
	"github.com/invoicedesk/idesk/internal/models"
)

// InvoicesAPI talks to the /invoices resource, including the lifecycle
// actions (send, cancel, duplicate, payments) and the binary exports.
type InvoicesAPI struct {
	t   *Transport
	log logging.Logger
}

func NewInvoicesAPI(t *Transport, log logging.Logger) *InvoicesAPI {
	return &InvoicesAPI{t: t, log: log}
}

func (a *InvoicesAPI) List(ctx context.Context, p ListParams) (ListResult[models.Invoice], error) {
	op := Op{Name: "invoices.List", Method: http.MethodGet, Path: "/invoices"}

	resp, err := a.t.Get(ctx, "/invoices", p.Values())
	if err != nil {
		return ListResult[models.Invoice]{}, Normalize(err, "failed to load invoices", op, a.log)
	}
	out, err := decodeList[models.Invoice](resp)
	if err != nil {
		return ListResult[models.Invoice]{}, Normalize(err, "failed to load invoices", op, a.log)
	}
	return out, nil
}

func (a *InvoicesAPI) Get(ctx context.Context, id string) (*models.Invoice, error) {
	path := "/invoices/" + id
	op := Op{Name: "invoices.Get", Method: http.MethodGet, Path: path}

	resp, err := a.t.Get(ctx, path, nil)
	if err != nil {
		return nil, Normalize(err, "failed to load invoice", op, a.log)
	}
	inv, err := decodeData[models.Invoice](resp)
	if err != nil {
		return nil, Normalize(err, "failed to load invoice", op, a.log)
	}
	return &inv, nil
}

// Create submits a new invoice. A client-generated idempotency id is filled
// in when the caller left it empty, so a retried create cannot duplicate.
func (a *InvoicesAPI) Create(ctx context.Context, in models.InvoiceInput) (*models.Invoice, error) {
	op := Op{Name: "invoices.Create", Method: http.MethodPost, Path: "/invoices"}

	if in.IdempotencyID == "" {
		in.IdempotencyID = uuid.NewString()
	}

	resp, err := a.t.Post(ctx, "/invoices", in)
	if err != nil {
		return nil, Normalize(err, "failed to create invoice", op, a.log)
	}
	inv, err := decodeData[models.Invoice](resp)
	if err != nil {
		return nil, Normalize(err, "failed to create invoice", op, a.log)
	}
	return &inv, nil
}

func (a *InvoicesAPI) Update(ctx context.Context, id string, version int64, in models.InvoiceInput) (*models.Invoice, error) {
	path := "/invoices/" + id
	op := Op{Name: "invoices.Update", Method: http.MethodPut, Path: path}

	resp, err := a.t.Put(ctx, path, in, WithIfMatch(version))
	if err != nil {
		return nil, Normalize(err, "failed to update invoice", op, a.log)
	}
	inv, err := decodeData[models.Invoice](resp)
	if err != nil {
		return nil, Normalize(err, "failed to update invoice", op, a.log)
	}
	return &inv, nil
}

func (a *InvoicesAPI) Delete(ctx context.Context, id string) error {
	path := "/invoices/" + id
	op := Op{Name: "invoices.Delete", Method: http.MethodDelete, Path: path}

	resp, err := a.t.Delete(ctx, path)
	if err != nil {
		return Normalize(err, "failed to delete invoice", op, a.log)
	}
	if _, err := decodeData[json.RawMessage](resp); err != nil {
		return Normalize(err, "failed to delete invoice", op, a.log)
	}
	return nil
}

// action posts to an invoice sub-resource and returns the updated record.
func (a *InvoicesAPI) action(ctx context.Context, id, verb, defaultMsg string, body any) (*models.Invoice, error) {
	path := "/invoices/" + id + "/" + verb
	op := Op{Name: "invoices." + verb, Method: http.MethodPost, Path: path}

	resp, err := a.t.Post(ctx, path, body)
	if err != nil {
		return nil, Normalize(err, defaultMsg, op, a.log)
	}
	inv, err := decodeData[models.Invoice](resp)
	if err != nil {
		return nil, Normalize(err, defaultMsg, op, a.log)
	}
	return &inv, nil
}

// RecordPayment registers a payment and returns the updated invoice.
func (a *InvoicesAPI) RecordPayment(ctx context.Context, id string, p models.Payment) (*models.Invoice, error) {
	return a.action(ctx, id, "payments", "failed to record payment", p)
}

// Send marks the invoice as sent to the customer.
func (a *InvoicesAPI) Send(ctx context.Context, id string) (*models.Invoice, error) {
	return a.action(ctx, id, "send", "failed to send invoice", nil)
}

// Cancel voids the invoice.
func (a *InvoicesAPI) Cancel(ctx context.Context, id string) (*models.Invoice, error) {
	return a.action(ctx, id, "cancel", "failed to cancel invoice", nil)
}

// Duplicate creates a fresh draft copy and returns the new record.
func (a *InvoicesAPI) Duplicate(ctx context.Context, id string) (*models.Invoice, error) {
	return a.action(ctx, id, "duplicate", "failed to duplicate invoice", nil)
}

// DownloadPDF fetches the rendered invoice document.
func (a *InvoicesAPI) DownloadPDF(ctx context.Context, id string) ([]byte, error) {
	path := "/invoices/" + id + "/pdf"
	op := Op{Name: "invoices.DownloadPDF", Method: http.MethodGet, Path: path}

	resp, err := a.t.Get(ctx, path, nil, WithAccept("application/pdf"))
	if err != nil {
		return nil, Normalize(err, "failed to download invoice PDF", op, a.log)
	}
	if err := resp.ExpectContentType("application/pdf"); err != nil {
		return nil, Normalize(err, "failed to download invoice PDF", op, a.log)
	}
	return resp.Body, nil
}

// Export fetches the bulk CSV export of all invoices.
func (a *InvoicesAPI) Export(ctx context.Context) ([]byte, error) {
	op := Op{Name: "invoices.Export", Method: http.MethodGet, Path: "/invoices/export"}

	resp, err := a.t.Get(ctx, "/invoices/export", nil, WithAccept("text/csv"))
	if err != nil {
		return nil, Normalize(err, "failed to export invoices", op, a.log)
	}
	if err := resp.ExpectContentType("text/csv"); err != nil {
		return nil, Normalize(err, "failed to export invoices", op, a.log)
	}
	return resp.Body, nil
}
