// Package notify fans table change events out to in-process subscribers.
package notify

import (
	"sync"
	"time"
)

// Tables carried on the hub
const (
	TableTires   = "tires"
	TableHistory = "history"
)

// Event describes one committed mutation. Subscribers may receive the echo
// of their own write; the payload is small enough that a redundant re-fetch
// is the expected reaction.
type Event struct {
	Table     string    `json:"table"`
	Action    string    `json:"action"`
	RecordID  string    `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub distributes events to subscribers, scoped by table name.
type Hub struct {
	mu      sync.RWMutex
	nextID  int
	clients map[int]*subscriber
}

type subscriber struct {
	table string
	ch    chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[int]*subscriber)}
}

// Subscribe registers a listener for one table, or for every table when
// table is empty. The returned cancel func is safe to call more than once.
func (h *Hub) Subscribe(table string) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.clients[id] = &subscriber{table: table, ch: ch}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers the event to matching subscribers without blocking.
func (h *Hub) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.clients {
		if sub.table != "" && sub.table != event.Table {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// Drop if client is slow
		}
	}
}

// Len reports the number of active subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
