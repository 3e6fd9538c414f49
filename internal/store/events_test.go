package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/idesk/internal/logging"
	"github.com/invoicedesk/idesk/internal/models"
	"github.com/invoicedesk/idesk/internal/realtime"
)

// fakeFeed is an in-memory EventFeed.
type fakeFeed struct {
	ch chan realtime.Event
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{ch: make(chan realtime.Event, 16)}
}

func (f *fakeFeed) Subscribe(eventType string) (<-chan realtime.Event, func()) {
	return f.ch, func() { close(f.ch) }
}

func (f *fakeFeed) push(t *testing.T, typ string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	f.ch <- realtime.Event{Type: typ, Payload: raw}
}

func bindTestStores(t *testing.T) (*fakeFeed, *ClientsStore, *InvoicesStore, *UsersStore, func()) {
	t.Helper()
	feed := newFakeFeed()
	clients := NewClientsStore(&stubClientsAPI{})
	invoices := NewInvoicesStore(&stubInvoicesAPI{})
	users := NewUsersStore(nil)
	stop := BindRealtime(feed, clients, invoices, users, logging.NewDiscard())
	return feed, clients, invoices, users, stop
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	assert.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestBindRealtime_UpsertsUpdatedRecords(t *testing.T) {
	feed, clients, _, _, stop := bindTestStores(t)
	defer stop()

	feed.push(t, "client.updated", models.Client{ID: "c1", CompanyName: "Pushed"})

	eventually(t, func() bool {
		c, ok := clients.Cache.Get("c1")
		return ok && c.CompanyName == "Pushed"
	})
	assert.Equal(t, StatusIdle, clients.Cache.FetchStatus(), "pushes never flip the status")
}

func TestBindRealtime_DropsDeletedRecords(t *testing.T) {
	feed, _, invoices, _, stop := bindTestStores(t)
	defer stop()

	invoices.Cache.Upsert(models.Invoice{ID: "i1"})
	feed.push(t, "invoice.deleted", map[string]string{"id": "i1"})

	eventually(t, func() bool {
		_, ok := invoices.Cache.Get("i1")
		return !ok
	})
}

func TestBindRealtime_UpdatesUsers(t *testing.T) {
	feed, _, _, users, stop := bindTestStores(t)
	defer stop()

	feed.push(t, "user.updated", models.User{ID: "u1", Name: "Fresh"})

	eventually(t, func() bool {
		u, ok := users.Cache.Get("u1")
		return ok && u.Name == "Fresh"
	})
}

func TestBindRealtime_IgnoresMalformedPayload(t *testing.T) {
	feed, clients, _, _, stop := bindTestStores(t)
	defer stop()

	feed.ch <- realtime.Event{Type: "client.updated", Payload: json.RawMessage(`"oops"`)}
	feed.push(t, "client.updated", models.Client{ID: "ok"})

	eventually(t, func() bool {
		_, ok := clients.Cache.Get("ok")
		return ok
	})
	assert.Equal(t, 1, clients.Cache.Len())
}

func TestBindRealtime_StopEndsBinding(t *testing.T) {
	feed, _, _, _, stop := bindTestStores(t)
	stop()

	select {
	case _, open := <-feed.ch:
		assert.False(t, open)
	default:
	}
}
