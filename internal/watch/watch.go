// Package watch fans successful writes out to live subscribers. It replaces
// implicit re-render callbacks with explicit, cancellable subscription
// handles that always expose the latest document snapshot.
package watch

import (
	"fmt"
	"sync"
)

func EventTopic(eventID uint) string {
	return fmt.Sprintf("events/%d", eventID)
}

func GroupTopic(groupID uint) string {
	return fmt.Sprintf("groups/%d", groupID)
}

// Snapshot is one published document state for a topic such as "events/42".
type Snapshot struct {
	Topic string      `json:"topic"`
	Data  interface{} `json:"data"`
	// Deleted marks the terminal snapshot of a hard-deleted document.
	Deleted bool `json:"deleted,omitempty"`
}

// Subscription is a cancellable handle on one topic. Updates coalesce: a slow
// consumer always observes the newest snapshot, never a backlog.
type Subscription struct {
	topic  string
	ch     chan Snapshot
	cancel func()
	once   sync.Once
}

// Updates yields snapshots until the subscription is cancelled or the
// document is deleted.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.ch
}

func (s *Subscription) Topic() string {
	return s.topic
}

func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscription]struct{}),
	}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan Snapshot, 1),
	}
	sub.cancel = func() {
		h.mu.Lock()
		if set, ok := h.subs[topic]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, topic)
			}
		}
		h.mu.Unlock()
		close(sub.ch)
	}

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscription]struct{})
	}
	h.subs[topic][sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Publish delivers a snapshot to every subscriber of the topic without
// blocking: a pending stale snapshot is dropped in favor of the new one.
func (h *Hub) Publish(snapshot Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[snapshot.Topic] {
		select {
		case sub.ch <- snapshot:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- snapshot:
			default:
			}
		}
	}
}

// Subscribers reports how many handles are open on a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs[topic])
}
