package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/idesk/internal/api"
	"github.com/invoicedesk/idesk/internal/models"
)

func newClientCache() *Cache[models.Client] {
	return NewCache(func(c models.Client) string { return c.ID })
}

func clientPage(ids ...string) []models.Client {
	out := make([]models.Client, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Client{ID: id, CompanyName: "co-" + id})
	}
	return out
}

func TestCache_CommitList_PreservesServerOrder(t *testing.T) {
	c := newClientCache()
	c.BeginFetch()
	c.CommitList(clientPage("b", "a", "c"), Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 3, Limit: 10})

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	assert.Equal(t, "c", items[2].ID)
	assert.Equal(t, StatusSucceeded, c.FetchStatus())
}

func TestCache_SortRule_OrdersListAndUpserts(t *testing.T) {
	c := NewSortedCache(
		func(c models.Client) string { return c.ID },
		func(a, b models.Client) bool { return a.CompanyName < b.CompanyName },
	)
	c.CommitList([]models.Client{
		{ID: "1", CompanyName: "Zeta"},
		{ID: "2", CompanyName: "Acme"},
	}, Pagination{CurrentPage: 1})

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Acme", items[0].CompanyName)

	// новая запись через Upsert встаёт на своё место
	c.Upsert(models.Client{ID: "3", CompanyName: "Mercury"})
	items = c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "Mercury", items[1].CompanyName)

	// переименование меняет позицию
	c.Upsert(models.Client{ID: "1", CompanyName: "Aardvark"})
	items = c.Items()
	assert.Equal(t, "Aardvark", items[0].CompanyName)
}

func TestCache_CommitList_ReplacesPreviousPage(t *testing.T) {
	c := newClientCache()
	c.CommitList(clientPage("a", "b"), Pagination{CurrentPage: 1})
	c.CommitList(clientPage("c"), Pagination{CurrentPage: 2})

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "c", items[0].ID)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestCache_FetchStatusLifecycle(t *testing.T) {
	c := newClientCache()
	assert.Equal(t, StatusIdle, c.FetchStatus())

	c.BeginFetch()
	assert.Equal(t, StatusLoading, c.FetchStatus())

	c.FailFetch(&api.Error{Message: "boom"})
	assert.Equal(t, StatusFailed, c.FetchStatus())
	require.NotNil(t, c.FetchError())
	assert.Equal(t, "boom", c.FetchError().Message)

	c.BeginFetch()
	assert.Nil(t, c.FetchError(), "starting a fetch clears the previous error")
}

func TestCache_CancelledFetch_ReturnsToIdle(t *testing.T) {
	c := newClientCache()
	c.CommitList(clientPage("a"), Pagination{CurrentPage: 1, TotalItems: 1, Limit: 10, TotalPages: 1})

	c.BeginFetch()
	c.FailFetch(&api.Error{Message: "request cancelled", IsCancelled: true})

	assert.Equal(t, StatusIdle, c.FetchStatus())
	assert.Nil(t, c.FetchError())
	assert.Len(t, c.Items(), 1, "previous contents survive a cancellation")
}

func TestCache_MutationStatusIndependentOfFetch(t *testing.T) {
	c := newClientCache()
	c.BeginFetch()
	c.BeginMutation()
	c.FailMutation(&api.Error{Message: "conflict", Status: 409})

	assert.Equal(t, StatusLoading, c.FetchStatus())
	assert.Equal(t, StatusFailed, c.MutationStatus())
	assert.Equal(t, 409, c.MutationError().Status)
}

func TestCache_CommitDetail_MergesAndSelects(t *testing.T) {
	c := newClientCache()
	c.CommitList(clientPage("a", "b"), Pagination{})

	fresh := models.Client{ID: "a", CompanyName: "renamed"}
	c.CommitDetail(fresh)

	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "renamed", sel.CompanyName)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID, "merging keeps the record's position")
	assert.Equal(t, "renamed", items[0].CompanyName)
}

func TestCache_CommitDetail_Twice_IsIdempotent(t *testing.T) {
	c := newClientCache()
	rec := models.Client{ID: "a", CompanyName: "co"}
	c.CommitDetail(rec)
	c.CommitDetail(rec)

	assert.Equal(t, 1, c.Len())
	items := c.Items()
	require.Len(t, items, 1)
}

func TestCache_CommitCreation_GrowsWindowAndSelects(t *testing.T) {
	c := newClientCache()
	c.CommitList(clientPage("a", "b"), Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 2, Limit: 10})

	c.BeginMutation()
	c.CommitCreation(models.Client{ID: "c", CompanyName: "co-c"})

	p := c.Pagination()
	assert.Equal(t, 3, p.TotalItems)
	assert.Equal(t, 1, p.TotalPages)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, StatusSucceeded, c.MutationStatus())

	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "c", sel.ID, "the new record becomes the detail")
}

func TestCache_CommitCreation_OpensNewPage(t *testing.T) {
	c := newClientCache()
	// окно заполнено под завязку
	c.CommitList(clientPage("a"), Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 10, Limit: 10})

	c.CommitCreation(models.Client{ID: "b", CompanyName: "co-b"})

	p := c.Pagination()
	assert.Equal(t, 11, p.TotalItems)
	assert.Equal(t, 2, p.TotalPages)
}

func TestCache_CommitRemoval_ClampsPagination(t *testing.T) {
	c := newClientCache()
	// last page holds a single record
	c.CommitList(clientPage("z"), Pagination{CurrentPage: 5, TotalPages: 5, TotalItems: 41, Limit: 10})

	c.CommitRemoval("z")

	p := c.Pagination()
	assert.Equal(t, 40, p.TotalItems)
	assert.Equal(t, 4, p.TotalPages)
	assert.Equal(t, 4, p.CurrentPage, "page clamps so refresh cannot run past the end")
	assert.Equal(t, 0, c.Len())
}

func TestCache_CommitRemoval_LastRecordOverall(t *testing.T) {
	c := newClientCache()
	c.CommitList(clientPage("a"), Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 1, Limit: 10})

	c.CommitRemoval("a")

	p := c.Pagination()
	assert.Equal(t, 0, p.TotalItems)
	assert.Equal(t, 1, p.TotalPages, "page count never drops below one")
	assert.Equal(t, 1, p.CurrentPage)
}

func TestCache_CommitRemoval_ClearsSelection(t *testing.T) {
	c := newClientCache()
	c.CommitDetail(models.Client{ID: "a"})
	c.CommitRemoval("a")

	_, ok := c.Selected()
	assert.False(t, ok)
}

func TestCache_Upsert_DoesNotTouchStatus(t *testing.T) {
	c := newClientCache()
	c.Upsert(models.Client{ID: "evt", CompanyName: "pushed"})

	assert.Equal(t, StatusIdle, c.FetchStatus())
	got, ok := c.Get("evt")
	require.True(t, ok)
	assert.Equal(t, "pushed", got.CompanyName)
}

func TestCache_Reset(t *testing.T) {
	c := newClientCache()
	c.CommitList(clientPage("a"), Pagination{CurrentPage: 2, TotalItems: 11, Limit: 10, TotalPages: 2})
	c.BeginMutation()
	c.FailMutation(&api.Error{Message: "x"})

	c.Reset()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, StatusIdle, c.FetchStatus())
	assert.Equal(t, StatusIdle, c.MutationStatus())
	assert.Nil(t, c.MutationError())
	assert.Equal(t, Pagination{}, c.Pagination())
}

func TestAsAPIError_WrapsPlainError(t *testing.T) {
	err := context.DeadlineExceeded
	ae := asAPIError(err)
	require.NotNil(t, ae)
	assert.Equal(t, err.Error(), ae.Message)
	assert.ErrorIs(t, ae, err)
}
