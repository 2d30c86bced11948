// Package watch implements in-process push notification for store snapshots.
// Both persistence backends publish a full refreshed snapshot to a topic
// after every mutation; subscribers receive the snapshots over a channel.
package watch

import "sync"

// Hub fans out snapshots to topic subscribers. Subscriber channels are
// buffered with capacity one and coalesce: an unconsumed snapshot is
// replaced by the newest one, last-write-wins.
type Hub[T any] struct {
	mu   sync.Mutex
	subs map[string]map[*Subscription[T]]struct{}
}

// Subscription is one registered listener on a hub topic.
type Subscription[T any] struct {
	ch    chan T
	hub   *Hub[T]
	topic string
	once  sync.Once
}

// NewHub creates an empty hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		subs: make(map[string]map[*Subscription[T]]struct{}),
	}
}

// Subscribe registers a listener on topic.
func (h *Hub[T]) Subscribe(topic string) *Subscription[T] {
	sub := &Subscription[T]{
		ch:    make(chan T, 1),
		hub:   h,
		topic: topic,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscription[T]]struct{})
	}
	h.subs[topic][sub] = struct{}{}
	return sub
}

// Publish delivers snapshot to every subscriber of topic.
func (h *Hub[T]) Publish(topic string, snapshot T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[topic] {
		// Drop the stale snapshot if the subscriber has not consumed it.
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- snapshot
	}
}

// Updates returns the snapshot channel.
func (s *Subscription[T]) Updates() <-chan T {
	return s.ch
}

// Close deregisters the subscription and closes its channel. Safe to call
// more than once.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		delete(s.hub.subs[s.topic], s)
		if len(s.hub.subs[s.topic]) == 0 {
			delete(s.hub.subs, s.topic)
		}
		close(s.ch)
	})
}
