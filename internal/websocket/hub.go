// Package websocket pushes live match results to connected clients.
// WebSockets are persistent two-way connections: the server can push data the moment a
// score is entered, so everyone watching a match sees points change without polling.
//
// A Hub fans messages out to the clients of one server instance. With several
// instances behind a load balancer, a Relay passes each message through Redis so
// every instance's Hub delivers it.
package websocket

import (
	"context"
	"errors"
	// sync provides RWMutex so Count can read the client map while Run owns it.
	"sync"
)

// ErrStopped is returned by BroadcastMatch after the Hub's Run has returned.
var ErrStopped = errors.New("hub stopped")

// Broadcaster delivers a match update to everyone watching that match.
type Broadcaster interface {
	BroadcastMatch(ctx context.Context, matchID int64, data []byte) error
}

// ClientBuffer is how many messages a client may fall behind before it is dropped.
const ClientBuffer = 16

// Client is a single connected WebSocket client watching one match.
type Client struct {
	MatchID int64
	Send    chan []byte // The Hub writes here; the connection's writer drains it
}

// NewClient returns a client for matchID with a buffered Send channel.
func NewClient(matchID int64) *Client {
	return &Client{MatchID: matchID, Send: make(chan []byte, ClientBuffer)}
}

// Message is a unit of data for every client watching MatchID.
type Message struct {
	MatchID int64
	Data    []byte
}

// Hub manages active connections grouped by match id. Run owns the client map; the
// other methods only talk to it through channels, apart from Count which takes the
// read lock.
type Hub struct {
	// clients maps a match id to the set of clients watching it. Go has no built-in
	// set type, so map[*Client]bool is the usual stand-in.
	clients map[int64]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns

	mu sync.RWMutex
}

var _ Broadcaster = (*Hub)(nil)

// NewHub creates a Hub. The broadcast channel is buffered so a score request does not
// wait while the loop is busy; register and unregister are synchronous.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the Hub's event loop; start it with "go hub.Run(ctx)". When ctx ends every
// client's Send channel is closed and Run returns.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	// select waits on all channels at once and runs whichever case is ready first.
	// Only this goroutine ever writes the client map, which is what keeps the Hub
	// free of data races.
	for {
		select {
		case <-ctx.Done():
			// Shutting down: closing each Send channel ends that client's writer loop,
			// which in turn closes its socket.
			h.mu.Lock()
			for matchID, clients := range h.clients {
				for c := range clients {
					close(c.Send)
				}
				delete(h.clients, matchID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			// Create the match's set on its first watcher.
			h.mu.Lock()
			if h.clients[client.MatchID] == nil {
				h.clients[client.MatchID] = make(map[*Client]bool)
			}
			h.clients[client.MatchID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			// The inner select with a default case is a non-blocking send: if the
			// client's buffer is full we fall through instead of waiting.
			h.mu.Lock()
			for client := range h.clients[msg.MatchID] {
				select {
				case client.Send <- msg.Data:
				default:
					// Too slow: drop it rather than stall everyone else.
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove must be called with mu held. It is safe to call twice for the same client:
// the membership check stops Send from being closed again, which would panic.
func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.MatchID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.clients, client.MatchID)
	}
}

// BroadcastMatch queues data for every local client watching matchID. It gives up
// if ctx ends while the queue is full.
func (h *Hub) BroadcastMatch(ctx context.Context, matchID int64, data []byte) error {
	// done is closed when Run exits, so a send after shutdown fails fast instead of
	// blocking forever on a channel nobody reads.
	select {
	case h.broadcast <- &Message{MatchID: matchID, Data: data}:
		return nil
	case <-h.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register adds a client so it starts receiving broadcasts for its match. It returns
// false once the Hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client and closes its Send channel. Unregistering a client
// the Hub already dropped, or after the Hub stopped, is harmless.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Count returns how many clients are watching matchID.
func (h *Hub) Count(matchID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[matchID])
}
