// Package broadcast fans confirmed-donation events out to connected viewers.
package broadcast

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// subscriberBuffer bounds the per-connection queue. A viewer that falls this
// far behind starts losing messages rather than stalling the publisher.
const subscriberBuffer = 16

// Subscriber is one connected viewer session. Messages arrive on C in publish
// order; the channel is closed on Unsubscribe.
type Subscriber struct {
	C chan []byte
}

// Hub maintains the set of currently connected subscribers. Publish is
// best-effort and never blocks: sessions that connect later receive no
// backlog, and a full subscriber queue drops the message for that session
// only.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		subs:   make(map[*Subscriber]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new viewer session.
func (h *Hub) Subscribe() *Subscriber {
	s := &Subscriber{C: make(chan []byte, subscriberBuffer)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Unsubscribe removes the session and closes its channel. Safe to call once
// per subscriber.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.C)
	}
	h.mu.Unlock()
}

// Publish marshals v once and fans it out to every current subscriber.
func (h *Hub) Publish(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		h.logger.Error().Err(err).Msg("broadcast: marshal event failed")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.C <- msg:
		default:
			h.logger.Warn().Msg("broadcast: dropping message for slow viewer")
		}
	}
}

// Len returns the current number of connected sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
