package domain

// EventType defines the type of real-time event.
type EventType string

const (
	// EventConnected is the acknowledgement sent once per connection
	// right after the handshake. It carries no sequence number.
	EventConnected EventType = "CONNECTED"

	// EventTaskCreated carries the single newly created task.
	EventTaskCreated EventType = "TASK_CREATED"

	// EventTaskUpdated and EventTaskDeleted carry the full post-mutation
	// task collection snapshot.
	EventTaskUpdated EventType = "TASK_UPDATED"
	EventTaskDeleted EventType = "TASK_DELETED"
)

// Event is the payload sent over WebSocket. Events are immutable after
// construction; the feed owns them for the duration of dispatch.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload"`

	// Sequence is a strictly increasing per-process counter assigned by
	// the change feed, starting at 1. Connection acks have no sequence.
	Sequence uint64 `json:"sequence,omitempty"`
}
