package event

import "sync"

// Listener receives every event published on a bus.
type Listener func(e Event)

type subscription struct {
	id       uint64
	listener Listener
}

// Bus delivers events to its listeners synchronously, in subscription order.
// A bus belongs to one match session and lives as long as that session.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe - registers a listener and returns the function that removes it.
func (that *Bus) Subscribe(listener Listener) func() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.nextID++
	id := that.nextID
	that.subs = append(that.subs, subscription{id: id, listener: listener})

	var once sync.Once
	return func() {
		once.Do(func() { that.unsubscribe(id) })
	}
}

func (that *Bus) unsubscribe(id uint64) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for i, sub := range that.subs {
		if sub.id == id {
			that.subs = append(that.subs[:i:i], that.subs[i+1:]...)
			return
		}
	}
}

// Publish - calls every listener with the event.
func (that *Bus) Publish(e Event) {
	that.mu.RLock()
	subs := append([]subscription(nil), that.subs...)
	that.mu.RUnlock()

	for _, sub := range subs {
		sub.listener(e)
	}
}

// Len - returns the number of active listeners.
func (that *Bus) Len() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.subs)
}
