package store

import (
	"context"
	"sync"

	"github.com/invoicedesk/idesk/internal/api"
	"github.com/invoicedesk/idesk/internal/models"
)

// AdminAPI is the slice of the transport layer the admin store needs.
type AdminAPI interface {
	DashboardStats(ctx context.Context) (*models.DashboardStats, error)
	SecurityLogs(ctx context.Context, p api.ListParams) (api.ListResult[models.SecurityLogEntry], error)
}

// AdminStore holds the admin dashboard figures and the paginated security
// audit log.
type AdminStore struct {
	api AdminAPI

	mu      sync.Mutex
	stats   *models.DashboardStats
	status  Status
	lastErr *api.Error

	Logs *Cache[models.SecurityLogEntry]
}

func NewAdminStore(a AdminAPI) *AdminStore {
	return &AdminStore{
		api:  a,
		Logs: NewCache(func(e models.SecurityLogEntry) string { return e.ID }),
	}
}

// FetchStats loads the dashboard counters.
func (s *AdminStore) FetchStats(ctx context.Context) (*models.DashboardStats, error) {
	s.mu.Lock()
	s.status = StatusLoading
	s.lastErr = nil
	s.mu.Unlock()

	st, err := s.api.DashboardStats(ctx)

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
	s.stats = st
	s.status = StatusSucceeded
	return st, nil
}

// Stats returns the last loaded dashboard counters, if any.
func (s *AdminStore) Stats() (*models.DashboardStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats, s.stats != nil
}

func (s *AdminStore) StatsStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *AdminStore) StatsError() *api.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// FetchLogs loads one page of the security audit log.
func (s *AdminStore) FetchLogs(ctx context.Context, p api.ListParams) error {
	s.Logs.BeginFetch()
	out, err := s.api.SecurityLogs(ctx, p)
	if err != nil {
		s.Logs.FailFetch(err)
		return err
	}
	s.Logs.CommitList(out.Data, pageFrom(out))
	return nil
}

// Reset drops everything, for logout.
func (s *AdminStore) Reset() {
	s.mu.Lock()
	s.stats = nil
	s.status = StatusIdle
	s.lastErr = nil
	s.mu.Unlock()
	s.Logs.Reset()
}
