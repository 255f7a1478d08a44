package server

import (
	"sync"

	"github.com/sirupsen/logrus"
)

const subscriberBuffer = 16

// Notice tells sessions that the dataset changed
type Notice struct {
	Version uint64 `json:"version"`
	Commits int    `json:"commits"`
}

// Hub fans dataset notices out to every connected session
type Hub struct {
	logger      *logrus.Logger
	mu          sync.RWMutex
	subscribers map[chan Notice]struct{}
	dropped     int64
	closed      bool
}

// NewHub creates an empty hub
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger:      logger,
		subscribers: make(map[chan Notice]struct{}),
	}
}

// Subscribe returns a buffered channel of notices and a function that
// removes the subscription and closes the channel.
func (h *Hub) Subscribe() (<-chan Notice, func()) {
	ch := make(chan Notice, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		close(ch)
		h.mu.Unlock()
		return ch, func() {}
	}
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subscribers[ch]; ok {
				delete(h.subscribers, ch)
				close(ch)
			}
		})
	}
}

// Broadcast sends a notice to all subscribers. A subscriber whose buffer is
// full misses the notice.
func (h *Hub) Broadcast(n Notice) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		select {
		case ch <- n:
		default:
			h.dropped++
			h.logger.WithField("dropped", h.dropped).Warn("Dropped dataset notice for slow session")
		}
	}
}

// Subscribers returns the number of connected sessions
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped returns the total number of notices dropped for slow sessions
func (h *Hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Close closes every subscriber channel; later subscriptions get a closed channel
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = make(map[chan Notice]struct{})
	h.closed = true
}
