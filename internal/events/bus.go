// Package events carries change notifications from the API and the quote poller to
// connected views.
package events

import (
	"sync"
	"time"
)

// EventType names what changed.
type EventType string

const (
	TradesChanged     EventType = "TRADES_CHANGED"
	AccountsChanged   EventType = "ACCOUNTS_CHANGED"
	StrategiesChanged EventType = "STRATEGIES_CHANGED"
	BiasChanged       EventType = "BIAS_CHANGED"
	NotesChanged      EventType = "NOTES_CHANGED"
	PriceUpdate       EventType = "PRICE_UPDATE"
)

// Event is one notification.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// Subscriber handles events. It runs on its own goroutine and must not block the bus.
type Subscriber func(Event)

// Bus fans events out to subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber
	now         func() time.Time
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[EventType][]Subscriber),
		now:         time.Now,
	}
}

// Subscribe registers fn for one event type.
func (b *Bus) Subscribe(t EventType, fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[t] = append(b.subscribers[t], fn)
}

// SubscribeAll registers fn for every event type.
func (b *Bus) SubscribeAll(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.allSubs = append(b.allSubs, fn)
}

// Publish delivers e to every matching subscriber asynchronously. A zero timestamp is
// set to the current time.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = b.now()
	}
	for _, sub := range b.subscribers[e.Type] {
		go sub(e)
	}
	for _, sub := range b.allSubs {
		go sub(e)
	}
}

// PublishChange announces that a record of some kind was created, replaced or deleted.
func (b *Bus) PublishChange(t EventType, action, id string) {
	b.Publish(Event{
		Type: t,
		Data: map[string]any{
			"action": action,
			"id":     id,
		},
	})
}

// PublishPrice announces a new live quote.
func (b *Bus) PublishPrice(instrument string, bid, ask, mid float64) {
	b.Publish(Event{
		Type: PriceUpdate,
		Data: map[string]any{
			"symbol": instrument,
			"bid":    bid,
			"ask":    ask,
			"mid":    mid,
		},
	})
}
