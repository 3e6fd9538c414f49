package store

import (
	"context"
	"encoding/json"

	"github.com/invoicedesk/idesk/internal/logging"
	"github.com/invoicedesk/idesk/internal/models"
	"github.com/invoicedesk/idesk/internal/realtime"
)

// deletePayload is the body of *.deleted events.
type deletePayload struct {
	ID string `json:"id"`
}

// EventFeed is the slice of the realtime client the binder needs.
type EventFeed interface {
	Subscribe(eventType string) (<-chan realtime.Event, func())
}

// BindRealtime subscribes to the event feed and applies change events to
// the entity caches: updated records are merged in place, deleted ones are
// dropped. Statuses are untouched, so a push never flips a view into a
// loading or error state. The returned stop function ends the binding.
func BindRealtime(feed EventFeed, clients *ClientsStore, invoices *InvoicesStore, users *UsersStore, log logging.Logger) func() {
	events, cancel := feed.Subscribe("")
	done := make(chan struct{})

	go func() {
		defer close(done)
		for ev := range events {
			applyEvent(ev, clients, invoices, users, log)
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func applyEvent(ev realtime.Event, clients *ClientsStore, invoices *InvoicesStore, users *UsersStore, log logging.Logger) {
	switch ev.Type {
	case "client.created", "client.updated":
		var c models.Client
		if err := json.Unmarshal(ev.Payload, &c); err != nil || c.ID == "" {
			log.Warn(context.Background(), "bad client event payload", "type", ev.Type, "error", err)
			return
		}
		clients.Cache.Upsert(c)

	case "client.deleted":
		var p deletePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.ID == "" {
			log.Warn(context.Background(), "bad client event payload", "type", ev.Type, "error", err)
			return
		}
		clients.Cache.Drop(p.ID)

	case "invoice.created", "invoice.updated":
		var inv models.Invoice
		if err := json.Unmarshal(ev.Payload, &inv); err != nil || inv.ID == "" {
			log.Warn(context.Background(), "bad invoice event payload", "type", ev.Type, "error", err)
			return
		}
		invoices.Cache.Upsert(inv)

	case "invoice.deleted":
		var p deletePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.ID == "" {
			log.Warn(context.Background(), "bad invoice event payload", "type", ev.Type, "error", err)
			return
		}
		invoices.Cache.Drop(p.ID)

	case "user.created", "user.updated":
		var u models.User
		if err := json.Unmarshal(ev.Payload, &u); err != nil || u.ID == "" {
			log.Warn(context.Background(), "bad user event payload", "type", ev.Type, "error", err)
			return
		}
		users.Cache.Upsert(u)

	case "user.deleted":
		var p deletePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.ID == "" {
			log.Warn(context.Background(), "bad user event payload", "type", ev.Type, "error", err)
			return
		}
		users.Cache.Drop(p.ID)

	default:
		log.Debug(context.Background(), "unhandled event type", "type", ev.Type)
	}
}
