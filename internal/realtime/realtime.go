// Package realtime maintains the websocket feed of server-side change
// events and fans them out to in-process subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/invoicedesk/idesk/internal/logging"
)

var ErrNotConnected = errors.New("realtime: not connected")

// Event is one change notification from the server. Type names the change
// ("invoice.updated", "client.deleted"); Payload carries the affected
// record or, for deletions, its id.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type subscriber struct {
	eventType string
	ch        chan Event
}

// Client is a websocket consumer of the event feed. Dispatch to subscribers
// is fire and forget: a subscriber that is not draining its channel misses
// events rather than stalling the feed.
type Client struct {
	url   string
	token func() string
	log   logging.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	subs   map[*subscriber]struct{}
	done   chan struct{}
	closed bool
}

// New builds a client for the feed at url. token is read at connect time so
// a re-login picks up the fresh credential.
func New(url string, token func() string, log logging.Logger) *Client {
	return &Client{
		url:   url,
		token: token,
		log:   log,
		subs:  make(map[*subscriber]struct{}),
	}
}

// Connect dials the feed and starts the read loop. Calling Connect while a
// connection is live is an error; Close first.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return errors.New("realtime: already connected")
	}

	header := http.Header{}
	if t := c.token(); t != "" {
		header.Set("Authorization", "Bearer "+t)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("realtime: dial %s: status %d: %w", c.url, resp.StatusCode, err)
		}
		return fmt.Errorf("realtime: dial %s: %w", c.url, err)
	}

	c.conn = conn
	c.closed = false
	c.done = make(chan struct{})
	go c.readLoop(conn, c.done)

	c.log.Info(ctx, "realtime connected", "url", c.url)
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.log.Warn(context.Background(), "realtime read failed", "error", err)
			}
			return
		}
		if ev.Type == "" {
			c.log.Debug(context.Background(), "dropping event without type")
			continue
		}
		c.dispatch(ev)
	}
}

// dispatch delivers ev to every matching subscriber without blocking.
func (c *Client) dispatch(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for sub := range c.subs {
		if sub.eventType != "" && sub.eventType != ev.Type {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			c.log.Debug(context.Background(), "subscriber lagging, event dropped", "type", ev.Type)
		}
	}
}

// Subscribe registers interest in events of the given type; the empty string
// subscribes to everything. The returned cancel function removes the
// subscription and closes the channel.
func (c *Client) Subscribe(eventType string) (<-chan Event, func()) {
	sub := &subscriber{
		eventType: eventType,
		ch:        make(chan Event, 16),
	}

	c.mu.Lock()
	c.subs[sub] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, ok := c.subs[sub]; ok {
			delete(c.subs, sub)
			close(sub.ch)
		}
	}
	return sub.ch, cancel
}

// Done is closed when the read loop exits, whether by Close or by a broken
// connection. Returns a closed channel when never connected.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return c.done
}

// Close shuts the connection down. Subscriptions survive a Close so a
// reconnect keeps serving the same channels.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.closed = true
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteMessage(websocket.CloseMessage, msg)
	return conn.Close()
}
