package websocket

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/lorrc/task-tracker-backend/internal/core/domain"
	"github.com/lorrc/task-tracker-backend/internal/core/ports"
)

// Hub is the connection registry and broadcast dispatcher: it maintains
// the set of active Clients and fans change events out to them.
type Hub struct {
	// clients maps connection IDs to their active connection.
	clients map[uuid.UUID]*Client

	// broadcast is the internal event queue the dispatcher drains.
	// Enqueueing is non-blocking; a full queue drops the event and
	// forces every open connection to reconnect (see Broadcast).
	broadcast chan domain.Event

	// reset is signalled when an event was lost to overload. The run
	// loop handles it before dispatching further queued events, so a
	// connection that was open for the loss never sees a later one.
	reset chan struct{}

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// mu protects the clients map
	mu sync.RWMutex

	// logger for the hub
	logger *slog.Logger
}

// Ensure Hub implements the EventBroadcaster interface.
var _ ports.EventBroadcaster = (*Hub)(nil)

// NewHub creates a new WebSocket hub with the given event queue size.
func NewHub(logger *slog.Logger, queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		broadcast:  make(chan domain.Event, queueSize),
		reset:      make(chan struct{}, 1),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Broadcast enqueues an event for dispatch to all connected clients.
// This method implements the ports.EventBroadcaster interface and never
// blocks the caller.
//
// When the queue is full the event is lost; every connection open at
// that point would observe a sequence gap, so all of them are forced to
// disconnect and re-list instead.
func (h *Hub) Broadcast(event domain.Event) error {
	select {
	case h.broadcast <- event:
		return nil
	default:
		h.logger.Warn("broadcast queue full, dropping event and resetting connections",
			"event_type", event.Type,
			"sequence", event.Sequence,
		)
		select {
		case h.reset <- struct{}{}:
		default:
		}
		return nil
	}
}

// Run starts the hub's event loop. This MUST be run as a goroutine.
// A single goroutine drains the queue, so events reach each client's
// send channel in emission order; it is also the only goroutine that
// closes send channels.
func (h *Hub) Run() {
	for {
		// A pending reset is handled before any queued event. An event
		// enqueued after a loss can therefore only reach connections
		// established after the reset, which never saw the lost one.
		select {
		case <-h.reset:
			h.disconnectAll()
			continue
		default:
		}

		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case event := <-h.broadcast:
			h.dispatchEvent(event)

		case <-h.reset:
			h.disconnectAll()
		}
	}
}

// disconnectAll unregisters every open connection after an event was
// lost to overload. Clients reconnect and re-list, which keeps each
// connection's observed sequence stream gap-free.
func (h *Hub) disconnectAll() {
	clients := h.Snapshot()
	for _, client := range clients {
		h.unregisterClient(client)
	}

	h.logger.Warn("disconnected all clients after dropped event",
		"disconnected", len(clients),
	)
}

// registerClient adds a connection to the registry in open state
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	h.logger.Info("client registered",
		"connection_id", client.ID,
		"total_connections", len(h.clients),
	)
}

// unregisterClient removes a connection from the registry and closes its
// send channel. Safe to call for a connection that is already gone.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)

	client.CloseSend()

	h.logger.Info("client unregistered",
		"connection_id", client.ID,
		"total_connections", len(h.clients),
	)
}

// Snapshot returns a stable point-in-time list of currently-open
// connections for the dispatcher to iterate.
func (h *Hub) Snapshot() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// dispatchEvent delivers an event to every connection in the current
// registry snapshot. Delivery is attempted per connection independently:
// a connection that cannot keep up is unregistered and the remaining
// connections still receive the event.
func (h *Hub) dispatchEvent(event domain.Event) {
	clients := h.Snapshot()

	h.logger.Debug("dispatching event",
		"event_type", event.Type,
		"sequence", event.Sequence,
		"client_count", len(clients),
	)

	for _, client := range clients {
		select {
		case client.Send <- event:
			// Successfully queued
		default:
			// Client's send buffer is full. Closing it here rather than
			// skipping keeps every surviving connection gap-free.
			h.logger.Warn("client send buffer full, unregistering",
				"connection_id", client.ID,
			)
			h.unregisterClient(client)
		}
	}
}

// ClientCount returns the total number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsRegistered reports whether a connection is currently in the registry.
func (h *Hub) IsRegistered(connectionID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[connectionID]
	return ok
}
