package services

import (
	"log/slog"
	"sync"

	"github.com/lorrc/task-tracker-backend/internal/core/domain"
	"github.com/lorrc/task-tracker-backend/internal/core/ports"
)

// SequencedFeed assigns each change event a strictly increasing sequence
// number and enqueues it for dispatch. The counter starts at 1 per
// process lifetime and is not persisted.
type SequencedFeed struct {
	broadcaster ports.EventBroadcaster
	logger      *slog.Logger

	// mu guards the counter AND the enqueue: both happen in the same
	// critical section so dispatch order always matches sequence order.
	mu  sync.Mutex
	seq uint64
}

var _ ports.ChangeFeed = (*SequencedFeed)(nil)

// NewSequencedFeed creates a change feed that delivers through the given
// broadcaster.
func NewSequencedFeed(broadcaster ports.EventBroadcaster, logger *slog.Logger) *SequencedFeed {
	return &SequencedFeed{
		broadcaster: broadcaster,
		logger:      logger.With("component", "change_feed"),
	}
}

// Emit assigns the next sequence number and hands the event to the
// broadcaster. Enqueueing never blocks; a delivery-side failure is
// logged and never propagates to the mutation that triggered it.
func (f *SequencedFeed) Emit(kind domain.EventType, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	event := domain.Event{
		Type:     kind,
		Payload:  payload,
		Sequence: f.seq,
	}

	if err := f.broadcaster.Broadcast(event); err != nil {
		f.logger.Warn("failed to enqueue change event",
			"event_type", kind,
			"sequence", event.Sequence,
			"error", err,
		)
	}
}

// LastSequence returns the most recently assigned sequence number.
func (f *SequencedFeed) LastSequence() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seq
}
