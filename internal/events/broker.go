package events

import (
	"sync"
	"time"
)

// Action names what happened to a project.
type Action string

// Project actions.
const (
	ActionCreated  Action = "created"
	ActionSaved    Action = "saved"
	ActionRepaired Action = "repaired"
	ActionDeleted  Action = "deleted"
)

// Event describes a change to a project. Decisions carries the per-group save
// decisions when Action is ActionSaved.
type Event struct {
	ProjectID string            `json:"projectId"`
	Action    Action            `json:"action"`
	Decisions map[string]string `json:"decisions,omitempty"`
	At        time.Time         `json:"at"`
}

// Broker manages SSE subscribers.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewBroker constructs a broker instance.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe returns a channel that receives events.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, 8)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel from the broker.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish fans the event out to all subscribers. Slow subscribers miss events
// rather than block the publisher.
func (b *Broker) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}
	b.mu.RLock()
	for ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.RUnlock()
}
