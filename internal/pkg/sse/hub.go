package sse

import (
	"sync"
)

// Event is a server-sent event addressed to every subscriber of one tenant.
type Event struct {
	CorpID string
	Event  string
	Data   interface{}
}

// Hub fans events out to the subscribers of each tenant.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a subscriber for corpID. The returned cleanup closes
// the channel and may be called more than once.
func (h *Hub) Subscribe(corpID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[corpID] == nil {
		h.subscribers[corpID] = make(map[chan Event]struct{})
	}
	h.subscribers[corpID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[corpID], ch)
			close(ch)
			if len(h.subscribers[corpID]) == 0 {
				delete(h.subscribers, corpID)
			}
		})
	}

	return ch, cleanup
}

// Publish delivers event to the subscribers of event.CorpID. Slow subscribers
// with a full buffer miss the event.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[event.CorpID] {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *Hub) SubscriberCount(corpID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[corpID])
}
