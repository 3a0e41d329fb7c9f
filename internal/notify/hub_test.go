package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToMatchingTable(t *testing.T) {
	hub := NewHub()
	events, cancel := hub.Subscribe(TableTires)
	defer cancel()

	hub.Publish(Event{Table: TableTires, Action: "add", RecordID: "t1"})

	select {
	case event := <-events:
		assert.Equal(t, TableTires, event.Table)
		assert.Equal(t, "add", event.Action)
		assert.Equal(t, "t1", event.RecordID)
		assert.False(t, event.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}
}

func TestHubFiltersOtherTables(t *testing.T) {
	hub := NewHub()
	events, cancel := hub.Subscribe(TableHistory)
	defer cancel()

	hub.Publish(Event{Table: TableTires, Action: "add", RecordID: "t1"})

	select {
	case event := <-events:
		t.Fatalf("unexpected event: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubEmptyTableReceivesAll(t *testing.T) {
	hub := NewHub()
	events, cancel := hub.Subscribe("")
	defer cancel()

	hub.Publish(Event{Table: TableTires, Action: "add", RecordID: "t1"})
	hub.Publish(Event{Table: TableHistory, Action: "add", RecordID: "h1"})

	require.Equal(t, TableTires, (<-events).Table)
	require.Equal(t, TableHistory, (<-events).Table)
}

func TestHubCancelIsIdempotent(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe(TableTires)

	cancel()
	cancel()
	assert.Equal(t, 0, hub.Len())

	// Publishing after cancel must not panic or block
	hub.Publish(Event{Table: TableTires, Action: "add", RecordID: "t1"})
}

func TestHubDropsWhenSubscriberIsSlow(t *testing.T) {
	hub := NewHub()
	events, cancel := hub.Subscribe(TableTires)
	defer cancel()

	// Overflow the buffer; Publish must never block
	for i := 0; i < 100; i++ {
		hub.Publish(Event{Table: TableTires, Action: "add", RecordID: "t"})
	}

	received := 0
	for {
		select {
		case <-events:
			received++
		default:
			assert.LessOrEqual(t, received, 16)
			return
		}
	}
}
