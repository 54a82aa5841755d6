package core

import (
	"context"
	"sync"

	"pkt.systems/pslog"

	"pkt.systems/vtscope/schema"
)

// Hub owns the append-only event log and fans published batches out to live
// subscribers. It is the single ordering authority: batches reach every
// subscriber in publish order, and a new subscriber's backlog/live boundary
// is exact (no gap, no duplication).
type Hub struct {
	mu     sync.Mutex
	log    [][]schema.Event
	events int
	subs   map[*Subscriber]struct{}
	depth  int
	closed bool
	logger pslog.Logger
}

// Subscriber is one live viewer connection. Batches arrive on C in publish
// order; C is closed when the subscriber is dropped, the hub is closed, or
// the session ends.
type Subscriber struct {
	ch     chan []schema.Event
	closed bool
}

// C returns the subscriber's delivery channel.
func (s *Subscriber) C() <-chan []schema.Event { return s.ch }

// NewHub constructs a hub with the given per-subscriber queue depth.
func NewHub(depth int, logger pslog.Logger) *Hub {
	if depth <= 0 {
		depth = schema.DefaultSubscriberDepth
	}
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Hub{
		subs:   make(map[*Subscriber]struct{}),
		depth:  depth,
		logger: logger,
	}
}

// Publish appends batch to the event log and forwards it to every live
// subscriber. Delivery is non-blocking from the producer's perspective: a
// subscriber whose queue is full is closed rather than skipped or waited
// on, so a slow viewer can never stall or corrupt the stream for others.
func (h *Hub) Publish(batch []schema.Event) {
	if len(batch) == 0 {
		return
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.log = append(h.log, batch)
	h.events += len(batch)
	dropped := h.forwardLocked(batch)
	remaining := len(h.subs)
	h.mu.Unlock()

	if dropped > 0 {
		h.logger.Warn("hub subscriber dropped", "reason", "queue overflow", "dropped", dropped, "subs", remaining)
	}
	h.logger.Trace("hub publish", "events", len(batch))
}

// Subscribe registers a new subscriber and returns it together with the
// full backlog at the moment of registration. Returns ErrSessionClosed
// once the hub has been closed.
func (h *Hub) Subscribe() (*Subscriber, [][]schema.Event, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, nil, schema.ErrSessionClosed
	}
	sub := &Subscriber{ch: make(chan []schema.Event, h.depth)}
	h.subs[sub] = struct{}{}
	backlog := append([][]schema.Event(nil), h.log...)
	h.logger.Info("hub subscribe", "subs", len(h.subs), "backlog_batches", len(backlog))
	return sub, backlog, nil
}

// Unsubscribe removes sub. Removing one subscriber never affects others or
// the producer; unsubscribing twice is harmless.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	removed := h.removeLocked(sub)
	remaining := len(h.subs)
	h.mu.Unlock()
	if removed {
		h.logger.Info("hub unsubscribe", "subs", remaining)
	}
}

// Close publishes the single final Disconnected batch, closes every
// subscriber, and rejects all further publishes and subscriptions. It
// returns the final batch so callers can mirror it to other sinks.
// Calling Close again returns nil.
func (h *Hub) Close() []schema.Event {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	final := []schema.Event{{Type: schema.EventDisconnected}}
	h.log = append(h.log, final)
	h.events++
	h.forwardLocked(final)
	for sub := range h.subs {
		h.removeLocked(sub)
	}
	h.closed = true
	total := h.events
	h.mu.Unlock()

	h.logger.Info("hub closed", "events", total)
	return final
}

// EventCount returns the total number of events published so far.
func (h *Hub) EventCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.events
}

// forwardLocked delivers batch to every subscriber queue, closing the ones
// that overflow. Caller holds h.mu.
func (h *Hub) forwardLocked(batch []schema.Event) int {
	dropped := 0
	for sub := range h.subs {
		select {
		case sub.ch <- batch:
		default:
			h.removeLocked(sub)
			dropped++
		}
	}
	return dropped
}

func (h *Hub) removeLocked(sub *Subscriber) bool {
	if _, ok := h.subs[sub]; !ok {
		return false
	}
	delete(h.subs, sub)
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
	return true
}
