package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/idesk/internal/api"
	"github.com/invoicedesk/idesk/internal/models"
)

// stubClientsAPI scripts per-method results so store behaviour can be tested
// without a transport.
type stubClientsAPI struct {
	listResult api.ListResult[models.Client]
	listErr    error
	listCalls  int
	lastParams api.ListParams

	getResult *models.Client
	getErr    error

	created   *models.Client
	createErr error

	updated   *models.Client
	updateErr error

	deleteErr error

	history []models.HistoryEntry
}

func (s *stubClientsAPI) List(ctx context.Context, p api.ListParams) (api.ListResult[models.Client], error) {
	s.listCalls++
	s.lastParams = p
	return s.listResult, s.listErr
}

func (s *stubClientsAPI) Get(ctx context.Context, id string) (*models.Client, error) {
	return s.getResult, s.getErr
}

func (s *stubClientsAPI) Create(ctx context.Context, in models.ClientInput) (*models.Client, error) {
	return s.created, s.createErr
}

func (s *stubClientsAPI) Update(ctx context.Context, id string, version int64, in models.ClientInput) (*models.Client, error) {
	return s.updated, s.updateErr
}

func (s *stubClientsAPI) Delete(ctx context.Context, id string) error {
	return s.deleteErr
}

func (s *stubClientsAPI) History(ctx context.Context, id string) ([]models.HistoryEntry, error) {
	return s.history, nil
}

func TestClientsStore_Fetch_PopulatesCache(t *testing.T) {
	stub := &stubClientsAPI{
		listResult: api.ListResult[models.Client]{
			Data:        clientPage("x", "y"),
			CurrentPage: 2, TotalPages: 5, TotalItems: 42, Limit: 10,
		},
	}
	s := NewClientsStore(stub)

	err := s.Fetch(context.Background(), api.ListParams{Page: 2, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, api.ListParams{Page: 2, Limit: 10}, stub.lastParams)
	assert.Equal(t, StatusSucceeded, s.Cache.FetchStatus())
	assert.Equal(t, Pagination{CurrentPage: 2, TotalPages: 5, TotalItems: 42, Limit: 10}, s.Cache.Pagination())

	items := s.Cache.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "x", items[0].ID)
}

func TestClientsStore_Fetch_Failure(t *testing.T) {
	stub := &stubClientsAPI{listErr: &api.Error{Message: "boom", Status: 500}}
	s := NewClientsStore(stub)

	err := s.Fetch(context.Background(), api.ListParams{})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, s.Cache.FetchStatus())
	assert.Equal(t, "boom", s.Cache.FetchError().Message)
}

func TestClientsStore_Fetch_Cancelled_KeepsCache(t *testing.T) {
	stub := &stubClientsAPI{
		listResult: api.ListResult[models.Client]{Data: clientPage("a"), CurrentPage: 1, TotalPages: 1, TotalItems: 1, Limit: 10},
	}
	s := NewClientsStore(stub)
	require.NoError(t, s.Fetch(context.Background(), api.ListParams{}))

	stub.listErr = &api.Error{Message: "request cancelled", IsCancelled: true}
	err := s.Fetch(context.Background(), api.ListParams{Page: 2})
	require.Error(t, err)

	assert.Equal(t, StatusIdle, s.Cache.FetchStatus())
	assert.Len(t, s.Cache.Items(), 1)
}

func TestClientsStore_Refresh_RepeatsLastParams(t *testing.T) {
	stub := &stubClientsAPI{}
	s := NewClientsStore(stub)
	require.NoError(t, s.Fetch(context.Background(), api.ListParams{Page: 3, Search: "acme"}))

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 2, stub.listCalls)
	assert.Equal(t, api.ListParams{Page: 3, Search: "acme"}, stub.lastParams)
}

func TestClientsStore_FetchOne_SelectsRecord(t *testing.T) {
	stub := &stubClientsAPI{getResult: &models.Client{ID: "c1", CompanyName: "Acme"}}
	s := NewClientsStore(stub)

	c, err := s.FetchOne(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.CompanyName)

	sel, ok := s.Cache.Selected()
	require.True(t, ok)
	assert.Equal(t, "c1", sel.ID)
}

func TestClientsStore_Create_GrowsCountAndSelects(t *testing.T) {
	stub := &stubClientsAPI{
		listResult: api.ListResult[models.Client]{
			Data:        clientPage("a", "b"),
			CurrentPage: 1, TotalPages: 1, TotalItems: 2, Limit: 10,
		},
		created: &models.Client{ID: "c3", CompanyName: "Newco"},
	}
	s := NewClientsStore(stub)
	require.NoError(t, s.Fetch(context.Background(), api.ListParams{Page: 1, Limit: 10}))

	c, err := s.Create(context.Background(), models.ClientInput{CompanyName: "Newco"})
	require.NoError(t, err)
	assert.Equal(t, "c3", c.ID)

	assert.Equal(t, 3, s.Cache.Pagination().TotalItems)
	assert.Equal(t, 3, s.Cache.Len())

	sel, ok := s.Cache.Selected()
	require.True(t, ok)
	assert.Equal(t, "c3", sel.ID)
}

func TestClientsStore_Update_MergesServerRecord(t *testing.T) {
	stub := &stubClientsAPI{updated: &models.Client{ID: "c1", CompanyName: "Renamed", Version: 4}}
	s := NewClientsStore(stub)
	s.Cache.CommitList([]models.Client{{ID: "c1", CompanyName: "Old", Version: 3}}, Pagination{})

	_, err := s.Update(context.Background(), "c1", 3, models.ClientInput{CompanyName: "Renamed"})
	require.NoError(t, err)

	got, ok := s.Cache.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "Renamed", got.CompanyName)
	assert.Equal(t, int64(4), got.Version)
	assert.Equal(t, StatusSucceeded, s.Cache.MutationStatus())
}

func TestClientsStore_Update_Conflict(t *testing.T) {
	stub := &stubClientsAPI{updateErr: &api.Error{Message: "version conflict", Status: 409}}
	s := NewClientsStore(stub)

	_, err := s.Update(context.Background(), "c1", 2, models.ClientInput{})
	require.Error(t, err)
	assert.Equal(t, StatusFailed, s.Cache.MutationStatus())
	assert.Equal(t, 409, s.Cache.MutationError().Status)
}

func TestClientsStore_Remove_DropsRecordAndClampsPage(t *testing.T) {
	stub := &stubClientsAPI{}
	s := NewClientsStore(stub)
	s.Cache.CommitList(clientPage("only"), Pagination{CurrentPage: 3, TotalPages: 3, TotalItems: 21, Limit: 10})

	require.NoError(t, s.Remove(context.Background(), "only"))

	assert.Equal(t, 0, s.Cache.Len())
	assert.Equal(t, 2, s.Cache.Pagination().CurrentPage)
}

func TestClientsStore_Remove_Failure_KeepsRecord(t *testing.T) {
	stub := &stubClientsAPI{deleteErr: &api.Error{Message: "forbidden", Status: 403}}
	s := NewClientsStore(stub)
	s.Cache.CommitList(clientPage("a"), Pagination{})

	err := s.Remove(context.Background(), "a")
	require.Error(t, err)
	assert.Equal(t, 1, s.Cache.Len())
	assert.Equal(t, StatusFailed, s.Cache.MutationStatus())
}
