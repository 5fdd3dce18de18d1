package sse

import (
	"sync"
)

// Event represents an SSE event to be sent to subscribers
type Event struct {
	ID    string
	Event string
	Data  interface{}
}

type subscriber struct {
	userID string
	admin  bool
}

// Hub manages SSE subscribers and event broadcasting. Admin subscribers
// receive every event published for any user.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]subscriber
	byUser      map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]subscriber),
		byUser:      make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber and returns the event channel and cleanup function
func (h *Hub) Subscribe(userID string, admin bool) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)
	h.subscribers[ch] = subscriber{userID: userID, admin: admin}
	if h.byUser[userID] == nil {
		h.byUser[userID] = make(map[chan Event]struct{})
	}
	h.byUser[userID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.remove(ch)
		})
	}

	return ch, cleanup
}

// remove drops and closes ch if it is still registered. Callers hold h.mu.
func (h *Hub) remove(ch chan Event) {
	sub, ok := h.subscribers[ch]
	if !ok {
		return
	}
	delete(h.subscribers, ch)
	delete(h.byUser[sub.userID], ch)
	if len(h.byUser[sub.userID]) == 0 {
		delete(h.byUser, sub.userID)
	}
	close(ch)
}

// CloseAll closes every subscriber channel, ending their streams.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		h.remove(ch)
	}
}

// Publish sends an event to the user's subscribers and to all admin
// subscribers. Each channel receives the event at most once.
func (h *Hub) Publish(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch, sub := range h.subscribers {
		if sub.userID != userID && !sub.admin {
			continue
		}
		select {
		case ch <- event:
		default:
			// Skip if channel is full (non-blocking to prevent deadlock)
		}
	}
}

// SubscriberCount returns the number of active subscribers for a user
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}

// TotalSubscribers returns the total number of active subscribers across all users
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
