package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/idesk/internal/logging"
	"github.com/invoicedesk/idesk/internal/models"
)

func newInvoicesAPI(t *testing.T, handler http.HandlerFunc) *InvoicesAPI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tr, err := NewTransport(Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return NewInvoicesAPI(tr, logging.NewDiscard())
}

func TestInvoicesCreate_FillsIdempotencyID(t *testing.T) {
	var got models.InvoiceInput
	a := newInvoicesAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success": true, "data": {"id": "i1", "status": "draft"}}`))
	})

	_, err := a.Create(context.Background(), models.InvoiceInput{ClientID: "c1"})
	require.NoError(t, err)

	require.NotEmpty(t, got.IdempotencyID)
	_, err = uuid.Parse(got.IdempotencyID)
	assert.NoError(t, err, "idempotency id should be a uuid")
}

func TestInvoicesCreate_KeepsCallerIdempotencyID(t *testing.T) {
	var got models.InvoiceInput
	a := newInvoicesAPI(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"success": true, "data": {"id": "i1"}}`))
	})

	_, err := a.Create(context.Background(), models.InvoiceInput{IdempotencyID: "retry-7"})
	require.NoError(t, err)
	assert.Equal(t, "retry-7", got.IdempotencyID)
}

func TestInvoicesSend_PostsToSubresource(t *testing.T) {
	a := newInvoicesAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/invoices/i1/send", r.URL.Path)
		w.Write([]byte(`{"success": true, "data": {"id": "i1", "status": "sent"}}`))
	})

	inv, err := a.Send(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSent, inv.Status)
}

func TestInvoicesRecordPayment_ReturnsUpdatedInvoice(t *testing.T) {
	a := newInvoicesAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoices/i1/payments", r.URL.Path)
		var p models.Payment
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		assert.Equal(t, 150.0, p.Amount)
		w.Write([]byte(`{"success": true, "data": {"id": "i1", "status": "paid"}}`))
	})

	inv, err := a.RecordPayment(context.Background(), "i1", models.Payment{Amount: 150})
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, inv.Status)
}

func TestInvoicesDownloadPDF(t *testing.T) {
	pdf := []byte("%PDF-1.7 fake")
	a := newInvoicesAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/pdf", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	})

	body, err := a.DownloadPDF(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, pdf, body)
}

func TestInvoicesDownloadPDF_WrongContentType(t *testing.T) {
	a := newInvoicesAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>login</html>"))
	})

	_, err := a.DownloadPDF(context.Background(), "i1")
	require.Error(t, err)

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.ErrorIs(t, ae.Err, ErrInvalidResponse)
}

func TestInvoicesExport_CSV(t *testing.T) {
	a := newInvoicesAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/invoices/export", r.URL.Path)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Write([]byte("id,number,total\n"))
	})

	body, err := a.Export(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(body), "number")
}
