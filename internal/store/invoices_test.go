package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/idesk/internal/api"
	"github.com/invoicedesk/idesk/internal/models"
)

type stubInvoicesAPI struct {
	listResult api.ListResult[models.Invoice]
	listErr    error

	record    *models.Invoice
	actionErr error
	lastVerb  string

	pdf []byte
	csv []byte
}

func (s *stubInvoicesAPI) List(ctx context.Context, p api.ListParams) (api.ListResult[models.Invoice], error) {
	return s.listResult, s.listErr
}

func (s *stubInvoicesAPI) Get(ctx context.Context, id string) (*models.Invoice, error) {
	return s.record, s.actionErr
}

func (s *stubInvoicesAPI) Create(ctx context.Context, in models.InvoiceInput) (*models.Invoice, error) {
	return s.record, s.actionErr
}

func (s *stubInvoicesAPI) Update(ctx context.Context, id string, version int64, in models.InvoiceInput) (*models.Invoice, error) {
	return s.record, s.actionErr
}

func (s *stubInvoicesAPI) Delete(ctx context.Context, id string) error {
	return s.actionErr
}

func (s *stubInvoicesAPI) RecordPayment(ctx context.Context, id string, p models.Payment) (*models.Invoice, error) {
	s.lastVerb = "payments"
	return s.record, s.actionErr
}

func (s *stubInvoicesAPI) Send(ctx context.Context, id string) (*models.Invoice, error) {
	s.lastVerb = "send"
	return s.record, s.actionErr
}

func (s *stubInvoicesAPI) Cancel(ctx context.Context, id string) (*models.Invoice, error) {
	s.lastVerb = "cancel"
	return s.record, s.actionErr
}

func (s *stubInvoicesAPI) Duplicate(ctx context.Context, id string) (*models.Invoice, error) {
	s.lastVerb = "duplicate"
	return s.record, s.actionErr
}

func (s *stubInvoicesAPI) DownloadPDF(ctx context.Context, id string) ([]byte, error) {
	return s.pdf, s.actionErr
}

func (s *stubInvoicesAPI) Export(ctx context.Context) ([]byte, error) {
	return s.csv, s.actionErr
}

func TestInvoicesStore_Send_UpdatesCachedStatus(t *testing.T) {
	stub := &stubInvoicesAPI{record: &models.Invoice{ID: "i1", Status: models.InvoiceStatusSent}}
	s := NewInvoicesStore(stub)
	s.Cache.CommitList([]models.Invoice{{ID: "i1", Status: models.InvoiceStatusDraft}}, Pagination{})

	inv, err := s.Send(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSent, inv.Status)
	assert.Equal(t, "send", stub.lastVerb)

	got, ok := s.Cache.Get("i1")
	require.True(t, ok)
	assert.Equal(t, models.InvoiceStatusSent, got.Status)
	assert.Equal(t, StatusSucceeded, s.Cache.MutationStatus())
}

func TestInvoicesStore_RecordPayment(t *testing.T) {
	stub := &stubInvoicesAPI{record: &models.Invoice{ID: "i1", Status: models.InvoiceStatusPaid, AmountPaid: 150}}
	s := NewInvoicesStore(stub)

	inv, err := s.RecordPayment(context.Background(), "i1", models.Payment{Amount: 150})
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, inv.Status)
	assert.Equal(t, "payments", stub.lastVerb)
}

func TestInvoicesStore_Duplicate_AddsCopyToCache(t *testing.T) {
	stub := &stubInvoicesAPI{record: &models.Invoice{ID: "i2", Status: models.InvoiceStatusDraft}}
	s := NewInvoicesStore(stub)
	s.Cache.CommitList([]models.Invoice{{ID: "i1"}}, Pagination{})

	_, err := s.Duplicate(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Cache.Len())
}

func TestInvoicesStore_ActionFailure_SetsMutationError(t *testing.T) {
	stub := &stubInvoicesAPI{actionErr: &api.Error{Message: "already cancelled", Status: 422}}
	s := NewInvoicesStore(stub)

	_, err := s.Cancel(context.Background(), "i1")
	require.Error(t, err)
	assert.Equal(t, StatusFailed, s.Cache.MutationStatus())
	assert.Equal(t, 422, s.Cache.MutationError().Status)
}

func TestInvoicesStore_CancelledAction_ResetsToIdle(t *testing.T) {
	stub := &stubInvoicesAPI{actionErr: &api.Error{IsCancelled: true, Message: "request cancelled"}}
	s := NewInvoicesStore(stub)

	_, err := s.Send(context.Background(), "i1")
	require.Error(t, err)
	assert.Equal(t, StatusIdle, s.Cache.MutationStatus())
	assert.Nil(t, s.Cache.MutationError())
}

func TestInvoicesStore_DownloadPDF_DoesNotTouchCacheState(t *testing.T) {
	stub := &stubInvoicesAPI{pdf: []byte("%PDF")}
	s := NewInvoicesStore(stub)

	body, err := s.DownloadPDF(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), body)
	assert.Equal(t, StatusIdle, s.Cache.FetchStatus())
	assert.Equal(t, StatusIdle, s.Cache.MutationStatus())
}
