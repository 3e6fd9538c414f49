package store

import (
	"context"
	"strings"

	"github.com/invoicedesk/idesk/internal/api"
	"github.com/invoicedesk/idesk/internal/models"
)

// ClientsAPI is the slice of the transport layer the clients store needs.
type ClientsAPI interface {
	List(ctx context.Context, p api.ListParams) (api.ListResult[models.Client], error)
	Get(ctx context.Context, id string) (*models.Client, error)
	Create(ctx context.Context, in models.ClientInput) (*models.Client, error)
	Update(ctx context.Context, id string, version int64, in models.ClientInput) (*models.Client, error)
	Delete(ctx context.Context, id string) error
	History(ctx context.Context, id string) ([]models.HistoryEntry, error)
}

// ClientsStore caches the client directory and drives all client mutations.
type ClientsStore struct {
	api ClientsAPI

	Cache *Cache[models.Client]

	// LastParams remembers the query of the most recent page load so a
	// refresh after a mutation can repeat it.
	lastParams api.ListParams
}

// NewClientsStore builds a store listing clients by company name.
func NewClientsStore(a ClientsAPI) *ClientsStore {
	return &ClientsStore{
		api: a,
		Cache: NewSortedCache(
			func(c models.Client) string { return c.ID },
			func(a, b models.Client) bool {
				return strings.ToLower(a.CompanyName) < strings.ToLower(b.CompanyName)
			},
		),
	}
}

// Fetch loads one page of clients into the cache.
func (s *ClientsStore) Fetch(ctx context.Context, p api.ListParams) error {
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

// Refresh repeats the last page load.
func (s *ClientsStore) Refresh(ctx context.Context) error {
	return s.Fetch(ctx, s.lastParams)
}

// FetchOne loads a single client and selects it. The record is merged into
// the cache, so a later list render sees the fresh copy too.
func (s *ClientsStore) FetchOne(ctx context.Context, id string) (*models.Client, error) {
	s.Cache.ClearSelection()
	s.Cache.BeginFetch()
	c, err := s.api.Get(ctx, id)
	if err != nil {
		s.Cache.FailFetch(err)
		return nil, err
	}
	s.Cache.CommitDetail(*c)
	return c, nil
}

// Create inserts the new client, grows the total count and selects the
// record.
func (s *ClientsStore) Create(ctx context.Context, in models.ClientInput) (*models.Client, error) {
	s.Cache.BeginMutation()
	c, err := s.api.Create(ctx, in)
	if err != nil {
		s.Cache.FailMutation(err)
		return nil, err
	}
	s.Cache.CommitCreation(*c)
	return c, nil
}

func (s *ClientsStore) Update(ctx context.Context, id string, version int64, in models.ClientInput) (*models.Client, error) {
	s.Cache.BeginMutation()
	c, err := s.api.Update(ctx, id, version, in)
	if err != nil {
		s.Cache.FailMutation(err)
		return nil, err
	}
	s.Cache.CommitMutation(*c)
	return c, nil
}

func (s *ClientsStore) Remove(ctx context.Context, id string) error {
	s.Cache.BeginMutation()
	if err := s.api.Delete(ctx, id); err != nil {
		s.Cache.FailMutation(err)
		return err
	}
	s.Cache.CommitRemoval(id)
	return nil
}

// History is a pass-through read; the log is not cached.
func (s *ClientsStore) History(ctx context.Context, id string) ([]models.HistoryEntry, error) {
	return s.api.History(ctx, id)
}
