package store

import (
	"context"

	"github.com/invoicedesk/idesk/internal/api"
	"github.com/invoicedesk/idesk/internal/models"
)

// InvoicesAPI is the slice of the transport layer the invoices store needs.
type InvoicesAPI interface {
	List(ctx context.Context, p api.ListParams) (api.ListResult[models.Invoice], error)
	Get(ctx context.Context, id string) (*models.Invoice, error)
	Create(ctx context.Context, in models.InvoiceInput) (*models.Invoice, error)
	Update(ctx context.Context, id string, version int64, in models.InvoiceInput) (*models.Invoice, error)
	Delete(ctx context.Context, id string) error
	RecordPayment(ctx context.Context, id string, p models.Payment) (*models.Invoice, error)
	Send(ctx context.Context, id string) (*models.Invoice, error)
	Cancel(ctx context.Context, id string) (*models.Invoice, error)
	Duplicate(ctx context.Context, id string) (*models.Invoice, error)
	DownloadPDF(ctx context.Context, id string) ([]byte, error)
	Export(ctx context.Context) ([]byte, error)
}

// InvoicesStore caches invoices and drives the invoice lifecycle actions.
type InvoicesStore struct {
	api InvoicesAPI

	Cache *Cache[models.Invoice]

	lastParams api.ListParams
}

// NewInvoicesStore builds a store listing invoices newest first.
func NewInvoicesStore(a InvoicesAPI) *InvoicesStore {
	return &InvoicesStore{
		api: a,
		Cache: NewSortedCache(
			func(i models.Invoice) string { return i.ID },
			func(a, b models.Invoice) bool { return a.IssueDate.After(b.IssueDate) },
		),
	}
}

func (s *InvoicesStore) Fetch(ctx context.Context, p api.ListParams) error {
	s.Cache.BeginFetch()
	out, err := s.api.List(ctx, p)
	if err != nil {
		s.Cache.FailFetch(err)
		return err
	}
	s.lastParams = p
	s.Cache.CommitList(out.Data, pageFrom(out))
	return nil
}

func (s *InvoicesStore) Refresh(ctx context.Context) error {
	return s.Fetch(ctx, s.lastParams)
}

func (s *InvoicesStore) FetchOne(ctx context.Context, id string) (*models.Invoice, error) {
	s.Cache.ClearSelection()
	s.Cache.BeginFetch()
	inv, err := s.api.Get(ctx, id)
	if err != nil {
		s.Cache.FailFetch(err)
		return nil, err
	}
	s.Cache.CommitDetail(*inv)
	return inv, nil
}

// Create inserts the new invoice, grows the total count and selects the
// record.
func (s *InvoicesStore) Create(ctx context.Context, in models.InvoiceInput) (*models.Invoice, error) {
	s.Cache.BeginMutation()
	inv, err := s.api.Create(ctx, in)
	if err != nil {
		s.Cache.FailMutation(err)
		return nil, err
	}
	s.Cache.CommitCreation(*inv)
	return inv, nil
}

func (s *InvoicesStore) Update(ctx context.Context, id string, version int64, in models.InvoiceInput) (*models.Invoice, error) {
	s.Cache.BeginMutation()
	inv, err := s.api.Update(ctx, id, version, in)
	if err != nil {
		s.Cache.FailMutation(err)
		return nil, err
	}
	s.Cache.CommitMutation(*inv)
	return inv, nil
}

func (s *InvoicesStore) Remove(ctx context.Context, id string) error {
	s.Cache.BeginMutation()
	if err := s.api.Delete(ctx, id); err != nil {
		s.Cache.FailMutation(err)
		return err
	}
	s.Cache.CommitRemoval(id)
	return nil
}

// apply runs a lifecycle action and merges the updated invoice it returns.
func (s *InvoicesStore) apply(call func() (*models.Invoice, error)) (*models.Invoice, error) {
	s.Cache.BeginMutation()
	inv, err := call()
	if err != nil {
		s.Cache.FailMutation(err)
		return nil, err
	}
	s.Cache.CommitMutation(*inv)
	return inv, nil
}

func (s *InvoicesStore) RecordPayment(ctx context.Context, id string, p models.Payment) (*models.Invoice, error) {
	return s.apply(func() (*models.Invoice, error) { return s.api.RecordPayment(ctx, id, p) })
}

func (s *InvoicesStore) Send(ctx context.Context, id string) (*models.Invoice, error) {
	return s.apply(func() (*models.Invoice, error) { return s.api.Send(ctx, id) })
}

func (s *InvoicesStore) Cancel(ctx context.Context, id string) (*models.Invoice, error) {
	return s.apply(func() (*models.Invoice, error) { return s.api.Cancel(ctx, id) })
}

// Duplicate creates a draft copy. The copy lands in the cache so it shows up
// immediately; its position on the server-ordered page is corrected by the
// next refresh.
func (s *InvoicesStore) Duplicate(ctx context.Context, id string) (*models.Invoice, error) {
	return s.apply(func() (*models.Invoice, error) { return s.api.Duplicate(ctx, id) })
}

// DownloadPDF fetches the rendered document without touching cache state.
func (s *InvoicesStore) DownloadPDF(ctx context.Context, id string) ([]byte, error) {
	return s.api.DownloadPDF(ctx, id)
}

// Export fetches the CSV dump of all invoices.
func (s *InvoicesStore) Export(ctx context.Context) ([]byte, error) {
	return s.api.Export(ctx)
}
