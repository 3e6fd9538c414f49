package store

import (
	"context"
	"sync"

	"github.com/invoicedesk/idesk/internal/api"
	"github.com/invoicedesk/idesk/internal/models"
)

// ManagerAPI is the slice of the transport layer the manager store needs.
type ManagerAPI interface {
	Dashboard(ctx context.Context) (*models.ManagerDashboard, error)
	Quotes(ctx context.Context, p api.ListParams) (api.ListResult[models.Quote], error)
	Invoices(ctx context.Context, p api.ListParams) (api.ListResult[models.Invoice], error)
	Clients(ctx context.Context, p api.ListParams) (api.ListResult[models.Client], error)
}

// ManagerStore backs the manager workspace: an aggregate dashboard plus
// scoped quote, invoice and client listings kept apart from the global
// caches so a manager view never clobbers an admin view.
type ManagerStore struct {
	api ManagerAPI

	mu        sync.Mutex
	dashboard *models.ManagerDashboard
	status    Status
	lastErr   *api.Error

	Quotes   *Cache[models.Quote]
	Invoices *Cache[models.Invoice]
	Clients  *Cache[models.Client]
}

func NewManagerStore(a ManagerAPI) *ManagerStore {
	return &ManagerStore{
		api:      a,
		Quotes:   NewCache(func(q models.Quote) string { return q.ID }),
		Invoices: NewCache(func(i models.Invoice) string { return i.ID }),
		Clients:  NewCache(func(c models.Client) string { return c.ID }),
	}
}

func (s *ManagerStore) FetchDashboard(ctx context.Context) (*models.ManagerDashboard, error) {
	s.mu.Lock()
	s.status = StatusLoading
	s.lastErr = nil
	s.mu.Unlock()

	d, err := s.api.Dashboard(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if api.IsCancelled(err) {
			s.status = StatusIdle
		} else {
			s.status = StatusFailed
			s.lastErr = asAPIError(err)
		}
		return nil, err
	}
	s.dashboard = d
	s.status = StatusSucceeded
	return d, nil
}

func (s *ManagerStore) Dashboard() (*models.ManagerDashboard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dashboard, s.dashboard != nil
}

func (s *ManagerStore) DashboardStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *ManagerStore) FetchQuotes(ctx context.Context, p api.ListParams) error {
	s.Quotes.BeginFetch()
	out, err := s.api.Quotes(ctx, p)
	if err != nil {
		s.Quotes.FailFetch(err)
		return err
	}
	s.Quotes.CommitList(out.Data, pageFrom(out))
	return nil
}

func (s *ManagerStore) FetchInvoices(ctx context.Context, p api.ListParams) error {
	s.Invoices.BeginFetch()
	out, err := s.api.Invoices(ctx, p)
	if err != nil {
		s.Invoices.FailFetch(err)
		return err
	}
	s.Invoices.CommitList(out.Data, pageFrom(out))
	return nil
}

func (s *ManagerStore) FetchClients(ctx context.Context, p api.ListParams) error {
	s.Clients.BeginFetch()
	out, err := s.api.Clients(ctx, p)
	if err != nil {
		s.Clients.FailFetch(err)
		return err
	}
	s.Clients.CommitList(out.Data, pageFrom(out))
	return nil
}

func (s *ManagerStore) Reset() {
	s.mu.Lock()
	s.dashboard = nil
	s.status = StatusIdle
	s.lastErr = nil
	s.mu.Unlock()
	s.Quotes.Reset()
	s.Invoices.Reset()
	s.Clients.Reset()
}
