package service

import "sync"

// Resource names the persisted thing an event is about.
type Resource string

const (
	ResourceViews Resource = "views"
	ResourcePrefs Resource = "prefs"
)

// Event represents a saved-view or preference mutation.
type Event struct {
	Resource Resource // which store changed
	Action   string   // "created", "loaded", "deleted", "saved"
	ID       string   // resource ID, empty for prefs
}

// EventBus fans resource change events out to SSE subscribers. Publish
// never blocks; a subscriber that falls behind loses events rather than
// stalling the mutation path.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all subscribers without blocking.
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, drop
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

// DefaultBus is the process-wide bus the REST handlers publish to and the
// editor event stream subscribes to.
var DefaultBus = NewEventBus()
