package store

import (
	"context"

	"github.com/invoicedesk/idesk/internal/api"
	"github.com/invoicedesk/idesk/internal/models"
)

// UsersAPI is the slice of the transport layer the users store needs.
type UsersAPI interface {
	List(ctx context.Context, p api.ListParams) (api.ListResult[models.User], error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// UsersStore caches the user directory for the admin views.
type UsersStore struct {
	api UsersAPI

	Cache *Cache[models.User]

	lastParams api.ListParams
}

func NewUsersStore(a UsersAPI) *UsersStore {
	return &UsersStore{
		api:   a,
		Cache: NewCache(func(u models.User) string { return u.ID }),
	}
}

func (s *UsersStore) Fetch(ctx context.Context, p api.ListParams) error {
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

func (s *UsersStore) Refresh(ctx context.Context) error {
	return s.Fetch(ctx, s.lastParams)
}

func (s *UsersStore) FetchOne(ctx context.Context, id string) (*models.User, error) {
	s.Cache.ClearSelection()
	s.Cache.BeginFetch()
	u, err := s.api.Get(ctx, id)
	if err != nil {
		s.Cache.FailFetch(err)
		return nil, err
	}
	s.Cache.CommitDetail(*u)
	return u, nil
}

// Update applies a partial edit. The server answers with the merged record.
func (s *UsersStore) Update(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	s.Cache.BeginMutation()
	u, err := s.api.Update(ctx, id, patch)
	if err != nil {
		s.Cache.FailMutation(err)
		return nil, err
	}
	s.Cache.CommitMutation(*u)
	return u, nil
}

func (s *UsersStore) Remove(ctx context.Context, id string) error {
	s.Cache.BeginMutation()
	if err := s.api.Delete(ctx, id); err != nil {
		s.Cache.FailMutation(err)
		return err
	}
	s.Cache.CommitRemoval(id)
	return nil
}
