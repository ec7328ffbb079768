package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "github.com/qxxq-lcvn/treasure-hunt/pkg/domain"
	audit "github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit"
	"github.com/qxxq-lcvn/treasure-hunt/pkg/platform/audit/store/memory"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	actor := id.Address("0xalice")
	event := audit.Event{
		Actor:  actor,
		Action: string(audit.EventDIDCreated),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	events, err := pub.List(context.Background(), actor)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventDIDCreated), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.False(t, events[0].Timestamp.IsZero(), "timestamp should be stamped on emit")
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	actor := id.Address("0xbob")
	event := audit.Event{
		Actor:  actor,
		Action: string(audit.EventPlayerMoved),
	}

	err := pub.Emit(context.Background(), event)
	require.NoError(t, err)

	// Wait for async processing
	assert.Eventually(t, func() bool {
		events, err := store.ListByActor(context.Background(), actor)
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	actor := id.Address("0xcarol")
	for range 10 {
		err := pub.Emit(context.Background(), audit.Event{
			Actor:  actor,
			Action: string(audit.EventTreasureClaimed),
		})
		require.NoError(t, err)
	}

	// Close should drain all events
	pub.Close()

	events, err := store.ListByActor(context.Background(), actor)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_CategoryDerivedFromAction(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Actor:  "0xdan",
		Action: string(audit.EventPlayerRegistered),
	})
	require.NoError(t, err)

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryOperations, events[0].Category)
}
