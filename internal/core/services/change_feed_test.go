package services_test

import (
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/task-tracker-backend/internal/core/domain"
	"github.com/lorrc/task-tracker-backend/internal/core/mocks"
	"github.com/lorrc/task-tracker-backend/internal/core/services"
)

func TestSequencedFeed_AssignsIncreasingSequences(t *testing.T) {
	mockBroadcaster := mocks.NewMockEventBroadcaster()
	feed := services.NewSequencedFeed(mockBroadcaster, slog.Default())

	var got []domain.Event
	mockBroadcaster.On("Broadcast", mock.AnythingOfType("domain.Event")).
		Run(func(args mock.Arguments) {
			got = append(got, args.Get(0).(domain.Event))
		}).
		Return(nil)

	feed.Emit(domain.EventTaskCreated, "a")
	feed.Emit(domain.EventTaskUpdated, "b")
	feed.Emit(domain.EventTaskDeleted, "c")

	require.Len(t, got, 3)
	for i, event := range got {
		assert.Equal(t, uint64(i+1), event.Sequence)
	}
	assert.Equal(t, domain.EventTaskCreated, got[0].Type)
	assert.Equal(t, "a", got[0].Payload)
	assert.Equal(t, uint64(3), feed.LastSequence())
}

func TestSequencedFeed_SequencesAreUniqueUnderConcurrency(t *testing.T) {
	mockBroadcaster := mocks.NewMockEventBroadcaster()
	feed := services.NewSequencedFeed(mockBroadcaster, slog.Default())

	seen := make(map[uint64]bool)
	mockBroadcaster.On("Broadcast", mock.AnythingOfType("domain.Event")).
		Run(func(args mock.Arguments) {
			event := args.Get(0).(domain.Event)
			// Emit holds its lock across Broadcast, so no extra
			// synchronization is needed here.
			assert.False(t, seen[event.Sequence], "duplicate sequence %d", event.Sequence)
			seen[event.Sequence] = true
		}).
		Return(nil)

	const emitters = 8
	const perEmitter = 50

	var wg sync.WaitGroup
	for i := 0; i < emitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perEmitter; j++ {
				feed.Emit(domain.EventTaskUpdated, nil)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, emitters*perEmitter)
	assert.Equal(t, uint64(emitters*perEmitter), feed.LastSequence())
}

func TestSequencedFeed_BroadcastFailureDoesNotPropagate(t *testing.T) {
	mockBroadcaster := mocks.NewMockEventBroadcaster()
	feed := services.NewSequencedFeed(mockBroadcaster, slog.Default())

	mockBroadcaster.On("Broadcast", mock.Anything).Return(errors.New("queue full"))

	// Emit swallows the delivery error; the sequence still advances.
	feed.Emit(domain.EventTaskCreated, nil)
	feed.Emit(domain.EventTaskCreated, nil)

	assert.Equal(t, uint64(2), feed.LastSequence())
}
